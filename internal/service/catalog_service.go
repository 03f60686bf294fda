package service

import (
	"errors"
	"fmt"

	"github.com/yanryp/servicedesk-sub002/internal/model"
	"github.com/yanryp/servicedesk-sub002/internal/repository"
	"gorm.io/gorm"
)

// CatalogService 服务目录管理：目录/服务项/模板的增删改查、
// 动态字段schema演进、选项解析
type CatalogService struct {
	catalogRepo *repository.CatalogRepository
	fieldRepo   *repository.FieldDefinitionRepository
	masterData  MasterDataSource
}

func NewCatalogService(
	catalogRepo *repository.CatalogRepository,
	fieldRepo *repository.FieldDefinitionRepository,
	masterData MasterDataSource,
) *CatalogService {
	return &CatalogService{
		catalogRepo: catalogRepo,
		fieldRepo:   fieldRepo,
		masterData:  masterData,
	}
}

// FieldWithOptions 渲染用字段定义（选项已解析）
type FieldWithOptions struct {
	model.FieldDefinition
	ResolvedOptions []model.FieldOption `json:"resolved_options,omitempty"`
}

// ---- 目录 ----

func (s *CatalogService) ListCatalogs() ([]model.Catalog, error) {
	return s.catalogRepo.FindAllCatalogs()
}

func (s *CatalogService) GetCatalog(id uint) (*model.Catalog, error) {
	catalog, err := s.catalogRepo.FindCatalogByID(id)
	if err != nil {
		return nil, translateLookupError(err, "catalog", id)
	}
	return catalog, nil
}

func (s *CatalogService) CreateCatalog(catalog *model.Catalog) error {
	if catalog.Name == "" {
		return fmt.Errorf("%w: catalog name is required", ErrInvalidArgument)
	}
	return s.catalogRepo.CreateCatalog(catalog)
}

func (s *CatalogService) UpdateCatalog(catalog *model.Catalog) error {
	if _, err := s.GetCatalog(catalog.ID); err != nil {
		return err
	}
	return s.catalogRepo.UpdateCatalog(catalog)
}

func (s *CatalogService) DeleteCatalog(id uint) error {
	err := s.catalogRepo.DeleteCatalog(id)
	if errors.Is(err, repository.ErrCatalogHasItems) {
		return fmt.Errorf("%w: %v", ErrSchemaConflict, err)
	}
	return err
}

// ---- 服务项 ----

func (s *CatalogService) ListItems(catalogID uint) ([]model.Item, error) {
	return s.catalogRepo.FindItemsByCatalog(catalogID)
}

func (s *CatalogService) GetItem(id uint) (*model.Item, error) {
	item, err := s.catalogRepo.FindItemByID(id)
	if err != nil {
		return nil, translateLookupError(err, "item", id)
	}
	return item, nil
}

func (s *CatalogService) CreateItem(item *model.Item) error {
	if _, err := s.GetCatalog(item.CatalogID); err != nil {
		return err
	}
	if item.Name == "" {
		return fmt.Errorf("%w: item name is required", ErrInvalidArgument)
	}
	return s.catalogRepo.CreateItem(item)
}

func (s *CatalogService) UpdateItem(item *model.Item) error {
	if _, err := s.GetItem(item.ID); err != nil {
		return err
	}
	return s.catalogRepo.UpdateItem(item)
}

func (s *CatalogService) DeleteItem(id uint) error {
	err := s.catalogRepo.DeleteItem(id)
	if errors.Is(err, repository.ErrItemInUse) {
		return fmt.Errorf("%w: %v", ErrSchemaConflict, err)
	}
	return err
}

// ---- 模板 ----

func (s *CatalogService) ListTemplates(itemID uint) ([]model.Template, error) {
	return s.catalogRepo.FindTemplatesByItem(itemID)
}

func (s *CatalogService) GetTemplate(id uint) (*model.Template, error) {
	template, err := s.catalogRepo.FindTemplateByID(id)
	if err != nil {
		return nil, translateLookupError(err, "template", id)
	}
	return template, nil
}

func (s *CatalogService) CreateTemplate(template *model.Template) error {
	if _, err := s.GetItem(template.ItemID); err != nil {
		return err
	}
	if template.Name == "" {
		return fmt.Errorf("%w: template name is required", ErrInvalidArgument)
	}
	return s.catalogRepo.CreateTemplate(template)
}

func (s *CatalogService) UpdateTemplate(template *model.Template) error {
	if _, err := s.GetTemplate(template.ID); err != nil {
		return err
	}
	return s.catalogRepo.UpdateTemplate(template)
}

func (s *CatalogService) DeleteTemplate(id uint) error {
	err := s.catalogRepo.DeleteTemplate(id)
	if errors.Is(err, repository.ErrTemplateInUse) {
		return fmt.Errorf("%w: %v", ErrSchemaConflict, err)
	}
	return err
}

// ---- 字段定义 ----

// CreateField 创建字段定义（校验归属方存在、类型合法、选项来源互斥）
func (s *CatalogService) CreateField(def *model.FieldDefinition) error {
	if err := s.checkOwnerExists(def.Owner()); err != nil {
		return err
	}
	if err := checkFieldShape(def); err != nil {
		return err
	}
	err := s.fieldRepo.Create(def)
	if errors.Is(err, repository.ErrFieldNameTaken) {
		return fmt.Errorf("%w: %v", ErrSchemaConflict, err)
	}
	return err
}

// UpdateField 更新字段定义（已被答案引用的字段类型和必填属性不可变）
func (s *CatalogService) UpdateField(def *model.FieldDefinition) error {
	if err := checkFieldShape(def); err != nil {
		return err
	}
	err := s.fieldRepo.Update(def)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: field definition %d", ErrNotFound, def.ID)
	case errors.Is(err, repository.ErrFieldNameTaken), errors.Is(err, repository.ErrFieldFrozen):
		return fmt.Errorf("%w: %v", ErrSchemaConflict, err)
	}
	return err
}

// DeprecateField 废弃字段定义
func (s *CatalogService) DeprecateField(id uint) error {
	err := s.fieldRepo.Deprecate(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: field definition %d", ErrNotFound, id)
	}
	return err
}

// ListFields 查询归属方下的字段定义
func (s *CatalogService) ListFields(owner model.OwnerRef, includeDeprecated bool) ([]model.FieldDefinition, error) {
	if err := s.checkOwnerExists(owner); err != nil {
		return nil, err
	}
	return s.fieldRepo.FindByOwner(owner, includeDeprecated)
}

// checkFieldShape 校验字段定义自身的结构约束
// 选项类字段必须恰好配置一种选项来源，非选项类字段不能配置选项来源
func checkFieldShape(def *model.FieldDefinition) error {
	if def.FieldName == "" {
		return fmt.Errorf("%w: field name is required", ErrInvalidArgument)
	}
	if !def.FieldType.Valid() {
		return fmt.Errorf("%w: unknown field type %q", ErrInvalidArgument, def.FieldType)
	}

	hasStatic := def.HasStaticOptions()
	hasDataType := def.DataType != ""

	if def.FieldType.IsChoice() {
		if hasStatic && hasDataType {
			return fmt.Errorf("%w: field %q cannot have both static options and a data type reference", ErrInvalidArgument, def.FieldName)
		}
		if !hasStatic && !hasDataType {
			return fmt.Errorf("%w: choice field %q needs static options or a data type reference", ErrInvalidArgument, def.FieldName)
		}
		if hasStatic {
			if _, err := def.StaticOptions(); err != nil {
				return fmt.Errorf("%w: field %q has malformed static options", ErrInvalidArgument, def.FieldName)
			}
		}
		return nil
	}

	if hasStatic || hasDataType {
		return fmt.Errorf("%w: field %q of type %s cannot have an options source", ErrInvalidArgument, def.FieldName, def.FieldType)
	}
	return nil
}

// checkOwnerExists 校验字段归属方存在
func (s *CatalogService) checkOwnerExists(owner model.OwnerRef) error {
	switch owner.Type {
	case model.OwnerTypeItem:
		_, err := s.GetItem(owner.ID)
		return err
	case model.OwnerTypeTemplate:
		_, err := s.GetTemplate(owner.ID)
		return err
	default:
		return fmt.Errorf("%w: unknown owner type %q", ErrInvalidArgument, owner.Type)
	}
}

// ResolveOptions 解析字段的完整选项列表
// 静态选项直接返回；主数据引用的字段按 code/displayName 映射，
// 默认值与 code 匹配时标记 isDefault
func (s *CatalogService) ResolveOptions(def *model.FieldDefinition) ([]model.FieldOption, error) {
	if !def.FieldType.IsChoice() {
		return nil, nil
	}

	if def.HasStaticOptions() {
		opts, err := def.StaticOptions()
		if err != nil {
			return nil, fmt.Errorf("%w: field %q has malformed static options", ErrSchemaConflict, def.FieldName)
		}
		return opts, nil
	}

	if def.DataType == "" {
		return nil, fmt.Errorf("%w: choice field %q has no options source", ErrSchemaConflict, def.FieldName)
	}

	entries, err := s.masterData.ListActive(def.DataType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	opts := make([]model.FieldOption, 0, len(entries))
	for _, entry := range entries {
		opts = append(opts, model.FieldOption{
			Value:     entry.Code,
			Label:     entry.DisplayName,
			IsDefault: def.DefaultValue != "" && entry.Code == def.DefaultValue,
		})
	}
	return opts, nil
}

// ListItemFields 查询提单表单的字段定义（选项已解析）
// 表单字段由生效归属方定义：指定模板时为模板，否则为服务项
func (s *CatalogService) ListItemFields(itemID uint, templateID *uint) ([]FieldWithOptions, error) {
	item, err := s.GetItem(itemID)
	if err != nil {
		return nil, err
	}

	owner := model.ItemOwner(item.ID)
	if templateID != nil {
		template, err := s.GetTemplate(*templateID)
		if err != nil {
			return nil, err
		}
		if template.ItemID != item.ID {
			return nil, fmt.Errorf("%w: template %d does not belong to item %d", ErrInvalidArgument, template.ID, item.ID)
		}
		owner = model.TemplateOwner(template.ID)
	}

	defs, err := s.fieldRepo.FindByOwner(owner, false)
	if err != nil {
		return nil, err
	}

	fields := make([]FieldWithOptions, 0, len(defs))
	for i := range defs {
		opts, err := s.ResolveOptions(&defs[i])
		if err != nil {
			return nil, err
		}
		fields = append(fields, FieldWithOptions{
			FieldDefinition: defs[i],
			ResolvedOptions: opts,
		})
	}
	return fields, nil
}

// translateLookupError 将仓储层查找错误翻译为服务层错误分类
func translateLookupError(err error, kind string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %d", ErrNotFound, kind, id)
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
