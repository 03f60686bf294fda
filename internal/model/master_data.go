package model

import (
	"time"

	"gorm.io/datatypes"
)

// MasterDataEntry 主数据条目（网点、银行、终端等外部维护的参照数据）
// 请求链路上只读，由主数据管理工具维护
type MasterDataEntry struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	DataType    string         `gorm:"type:varchar(50);not null;index:idx_master_data_type" json:"data_type"` // branch, bank, terminal, application, menu...
	Code        string         `gorm:"type:varchar(100);not null" json:"code"`
	DisplayName string         `gorm:"type:varchar(200);not null" json:"display_name"`
	Metadata    datatypes.JSON `gorm:"type:json" json:"metadata"`
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`
	SortOrder   int            `gorm:"default:0" json:"sort_order"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// TableName 指定表名
func (MasterDataEntry) TableName() string {
	return "master_data_entries"
}
