package repository

import (
	"github.com/yanryp/servicedesk-sub002/internal/model"
	"gorm.io/gorm"
)

type MasterDataRepository struct {
	db *gorm.DB
}

func NewMasterDataRepository(db *gorm.DB) *MasterDataRepository {
	return &MasterDataRepository{db: db}
}

// FindActiveByDataType 查找指定类型的启用主数据（按sortOrder排序）
// 未知dataType自然返回空列表，不视为错误
func (r *MasterDataRepository) FindActiveByDataType(dataType string) ([]model.MasterDataEntry, error) {
	var entries []model.MasterDataEntry
	err := r.db.Where("data_type = ? AND is_active = ?", dataType, true).
		Order("sort_order ASC, code ASC").
		Find(&entries).Error
	return entries, err
}

// ListDataTypes 查找所有已存在的主数据类型
func (r *MasterDataRepository) ListDataTypes() ([]string, error) {
	var types []string
	err := r.db.Model(&model.MasterDataEntry{}).
		Distinct("data_type").
		Order("data_type ASC").
		Pluck("data_type", &types).Error
	return types, err
}
