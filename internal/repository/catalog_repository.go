package repository

import (
	"errors"

	"github.com/yanryp/servicedesk-sub002/internal/model"
	"gorm.io/gorm"
)

// ErrCatalogHasItems 目录下仍有启用的服务项，不允许删除
var ErrCatalogHasItems = errors.New("cannot delete catalog with active items")

// ErrTemplateInUse 模板已被工单引用，不允许删除
var ErrTemplateInUse = errors.New("cannot delete template referenced by tickets")

// ErrItemInUse 服务项已被工单引用，不允许删除
var ErrItemInUse = errors.New("cannot delete item referenced by tickets")

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// CreateCatalog 创建服务目录
func (r *CatalogRepository) CreateCatalog(catalog *model.Catalog) error {
	return r.db.Create(catalog).Error
}

// UpdateCatalog 更新服务目录
func (r *CatalogRepository) UpdateCatalog(catalog *model.Catalog) error {
	return r.db.Model(&model.Catalog{}).
		Where("id = ?", catalog.ID).
		Omit("created_at").
		Updates(catalog).Error
}

// DeleteCatalog 删除服务目录（仍有启用服务项时拒绝）
func (r *CatalogRepository) DeleteCatalog(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Item{}).
			Where("catalog_id = ? AND is_active = ?", id, true).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrCatalogHasItems
		}
		return tx.Delete(&model.Catalog{}, "id = ?", id).Error
	})
}

// FindCatalogByID 根据ID查找服务目录
func (r *CatalogRepository) FindCatalogByID(id uint) (*model.Catalog, error) {
	var catalog model.Catalog
	err := r.db.Where("id = ?", id).First(&catalog).Error
	if err != nil {
		return nil, err
	}
	return &catalog, nil
}

// FindAllCatalogs 查找所有服务目录
func (r *CatalogRepository) FindAllCatalogs() ([]model.Catalog, error) {
	var catalogs []model.Catalog
	err := r.db.Order("name ASC").Find(&catalogs).Error
	return catalogs, err
}

// CreateItem 创建服务项
func (r *CatalogRepository) CreateItem(item *model.Item) error {
	return r.db.Create(item).Error
}

// UpdateItem 更新服务项
func (r *CatalogRepository) UpdateItem(item *model.Item) error {
	return r.db.Model(&model.Item{}).
		Where("id = ?", item.ID).
		Omit("created_at").
		Updates(map[string]interface{}{
			"name":                         item.Name,
			"request_type":                 item.RequestType,
			"is_government_related":        item.IsGovernmentRelated,
			"requires_government_approval": item.RequiresGovernmentApproval,
			"is_active":                    item.IsActive,
			"sort_order":                   item.SortOrder,
		}).Error
}

// DeleteItem 删除服务项（已被工单引用时拒绝）
func (r *CatalogRepository) DeleteItem(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Ticket{}).
			Where("item_id = ?", id).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrItemInUse
		}
		return tx.Delete(&model.Item{}, "id = ?", id).Error
	})
}

// FindItemByID 根据ID查找服务项
func (r *CatalogRepository) FindItemByID(id uint) (*model.Item, error) {
	var item model.Item
	err := r.db.Preload("Catalog").Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindItemsByCatalog 查找目录下的服务项
func (r *CatalogRepository) FindItemsByCatalog(catalogID uint) ([]model.Item, error) {
	var items []model.Item
	err := r.db.Where("catalog_id = ?", catalogID).
		Order("sort_order ASC, name ASC").
		Find(&items).Error
	return items, err
}

// CreateTemplate 创建模板
func (r *CatalogRepository) CreateTemplate(template *model.Template) error {
	return r.db.Create(template).Error
}

// UpdateTemplate 更新模板
func (r *CatalogRepository) UpdateTemplate(template *model.Template) error {
	return r.db.Model(&model.Template{}).
		Where("id = ?", template.ID).
		Omit("created_at").
		Updates(map[string]interface{}{
			"name":                       template.Name,
			"template_type":              template.TemplateType,
			"requires_business_approval": template.RequiresBusinessApproval,
			"root_cause":                 template.RootCause,
			"issue_type":                 template.IssueType,
			"is_visible":                 template.IsVisible,
			"sort_order":                 template.SortOrder,
		}).Error
}

// DeleteTemplate 删除模板（已被工单引用时拒绝）
func (r *CatalogRepository) DeleteTemplate(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Ticket{}).
			Where("template_id = ?", id).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrTemplateInUse
		}
		return tx.Delete(&model.Template{}, "id = ?", id).Error
	})
}

// FindTemplateByID 根据ID查找模板
func (r *CatalogRepository) FindTemplateByID(id uint) (*model.Template, error) {
	var template model.Template
	err := r.db.Where("id = ?", id).First(&template).Error
	if err != nil {
		return nil, err
	}
	return &template, nil
}

// FindTemplatesByItem 查找服务项下的模板
func (r *CatalogRepository) FindTemplatesByItem(itemID uint) ([]model.Template, error) {
	var templates []model.Template
	err := r.db.Where("item_id = ?", itemID).
		Order("sort_order ASC, name ASC").
		Find(&templates).Error
	return templates, err
}
