package repository

import (
	"errors"

	"github.com/yanryp/servicedesk-sub002/internal/model"
	"gorm.io/gorm"
)

// ErrFieldNameTaken 字段机器键在归属方范围内已存在
var ErrFieldNameTaken = errors.New("field name already exists for this owner")

// ErrFieldFrozen 字段已有历史答案引用，类型和必填属性不可再修改
var ErrFieldFrozen = errors.New("field definition is referenced by ticket values and cannot change type or required flag")

type FieldDefinitionRepository struct {
	db *gorm.DB
}

func NewFieldDefinitionRepository(db *gorm.DB) *FieldDefinitionRepository {
	return &FieldDefinitionRepository{db: db}
}

// Create 创建字段定义（事务内校验机器键在归属方范围内唯一）
func (r *FieldDefinitionRepository) Create(def *model.FieldDefinition) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.FieldDefinition{}).
			Where("owner_type = ? AND owner_id = ? AND field_name = ? AND is_deprecated = ?",
				def.OwnerType, def.OwnerID, def.FieldName, false).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrFieldNameTaken
		}
		return tx.Create(def).Error
	})
}

// Update 更新字段定义
// 已被工单答案引用的字段，fieldType和isRequired被冻结；修改机器键时重新校验唯一性
func (r *FieldDefinitionRepository) Update(def *model.FieldDefinition) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing model.FieldDefinition
		if err := tx.Where("id = ?", def.ID).First(&existing).Error; err != nil {
			return err
		}

		if def.FieldType != existing.FieldType || def.IsRequired != existing.IsRequired {
			var refs int64
			if err := tx.Model(&model.TicketFieldValue{}).
				Where("field_definition_id = ?", def.ID).
				Count(&refs).Error; err != nil {
				return err
			}
			if refs > 0 {
				return ErrFieldFrozen
			}
		}

		if def.FieldName != existing.FieldName {
			var count int64
			if err := tx.Model(&model.FieldDefinition{}).
				Where("owner_type = ? AND owner_id = ? AND field_name = ? AND is_deprecated = ? AND id != ?",
					existing.OwnerType, existing.OwnerID, def.FieldName, false, def.ID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrFieldNameTaken
			}
		}

		// 归属方创建后不可变更
		def.OwnerType = existing.OwnerType
		def.OwnerID = existing.OwnerID

		return tx.Model(&model.FieldDefinition{}).
			Where("id = ?", def.ID).
			Omit("created_at", "owner_type", "owner_id").
			Updates(map[string]interface{}{
				"field_name":       def.FieldName,
				"field_label":      def.FieldLabel,
				"field_type":       def.FieldType,
				"is_required":      def.IsRequired,
				"sort_order":       def.SortOrder,
				"placeholder":      def.Placeholder,
				"default_value":    def.DefaultValue,
				"validation_rules": def.ValidationRules,
				"options":          def.Options,
				"data_type":        def.DataType,
			}).Error
	})
}

// Deprecate 废弃字段定义（管理员通过新建字段+废弃旧字段来演进schema）
func (r *FieldDefinitionRepository) Deprecate(id uint) error {
	result := r.db.Model(&model.FieldDefinition{}).
		Where("id = ?", id).
		Update("is_deprecated", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByID 根据ID查找字段定义
func (r *FieldDefinitionRepository) FindByID(id uint) (*model.FieldDefinition, error) {
	var def model.FieldDefinition
	err := r.db.Where("id = ?", id).First(&def).Error
	if err != nil {
		return nil, err
	}
	return &def, nil
}

// FindByOwner 查找归属方下的字段定义（按sortOrder排序）
func (r *FieldDefinitionRepository) FindByOwner(owner model.OwnerRef, includeDeprecated bool) ([]model.FieldDefinition, error) {
	var defs []model.FieldDefinition
	query := r.db.Where("owner_type = ? AND owner_id = ?", owner.Type, owner.ID)
	if !includeDeprecated {
		query = query.Where("is_deprecated = ?", false)
	}
	err := query.Order("sort_order ASC, id ASC").Find(&defs).Error
	return defs, err
}

// CountValues 统计字段定义被工单答案引用的次数
func (r *FieldDefinitionRepository) CountValues(fieldDefinitionID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.TicketFieldValue{}).
		Where("field_definition_id = ?", fieldDefinitionID).
		Count(&count).Error
	return count, err
}
