package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// FieldType 动态字段类型（封闭枚举，校验引擎对其做穷举switch）
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeNumber   FieldType = "number"
	FieldTypeDate     FieldType = "date"
	FieldTypeDateTime FieldType = "datetime"
	FieldTypeDropdown FieldType = "dropdown"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeRadio    FieldType = "radio"
)

// Valid 判断字段类型是否合法
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeText, FieldTypeTextarea, FieldTypeNumber, FieldTypeDate,
		FieldTypeDateTime, FieldTypeDropdown, FieldTypeCheckbox, FieldTypeRadio:
		return true
	}
	return false
}

// IsChoice 判断是否为选项类字段（取值必须来自ResolveOptions）
func (t FieldType) IsChoice() bool {
	return t == FieldTypeDropdown || t == FieldTypeCheckbox || t == FieldTypeRadio
}

// OwnerType 字段归属方类型
type OwnerType string

const (
	OwnerTypeItem     OwnerType = "item"
	OwnerTypeTemplate OwnerType = "template"
)

// OwnerRef 字段归属方引用（Item或Template二选一，结构上保证互斥）
type OwnerRef struct {
	Type OwnerType `json:"type"`
	ID   uint      `json:"id"`
}

// ItemOwner 构建服务项归属引用
func ItemOwner(id uint) OwnerRef {
	return OwnerRef{Type: OwnerTypeItem, ID: id}
}

// TemplateOwner 构建模板归属引用
func TemplateOwner(id uint) OwnerRef {
	return OwnerRef{Type: OwnerTypeTemplate, ID: id}
}

// FieldDefinition 动态字段定义（服务项/模板下的一个问题）
// 选项来源二选一：Options静态列表 或 DataType主数据引用，不能同时设置
type FieldDefinition struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	OwnerType       OwnerType      `gorm:"type:varchar(10);not null;index:idx_field_defs_owner,priority:1" json:"owner_type"`
	OwnerID         uint           `gorm:"not null;index:idx_field_defs_owner,priority:2" json:"owner_id"`
	FieldName       string         `gorm:"type:varchar(100);not null" json:"field_name"` // 机器键，归属方内唯一（事务内校验）
	FieldLabel      string         `gorm:"type:varchar(200);not null" json:"field_label"`
	FieldType       FieldType      `gorm:"type:varchar(20);not null" json:"field_type"`
	IsRequired      bool           `gorm:"default:false" json:"is_required"`
	SortOrder       int            `gorm:"default:0" json:"sort_order"`
	Placeholder     string         `gorm:"type:varchar(200)" json:"placeholder"`
	DefaultValue    string         `gorm:"type:varchar(200)" json:"default_value"`
	ValidationRules datatypes.JSON `gorm:"type:json" json:"validation_rules"` // {"max_length":..,"pattern":..,"min":..,"max":..}
	Options         datatypes.JSON `gorm:"type:json" json:"options"`          // 静态选项 [{"value":..,"label":..}]
	DataType        string         `gorm:"type:varchar(50);index" json:"data_type"` // 主数据类型引用，如 branch/bank/terminal
	IsDeprecated    bool           `gorm:"default:false;index" json:"is_deprecated"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// TableName 指定表名
func (FieldDefinition) TableName() string {
	return "field_definitions"
}

// Owner 获取归属方引用
func (d *FieldDefinition) Owner() OwnerRef {
	return OwnerRef{Type: d.OwnerType, ID: d.OwnerID}
}

// HasStaticOptions 是否配置了静态选项列表
func (d *FieldDefinition) HasStaticOptions() bool {
	return len(d.Options) > 0 && string(d.Options) != "null"
}

// StaticOptions 解析静态选项列表
func (d *FieldDefinition) StaticOptions() ([]FieldOption, error) {
	if !d.HasStaticOptions() {
		return nil, nil
	}
	var opts []FieldOption
	if err := json.Unmarshal(d.Options, &opts); err != nil {
		return nil, err
	}
	return opts, nil
}

// FieldOption 单个选项
type FieldOption struct {
	Value     string `json:"value"`
	Label     string `json:"label"`
	IsDefault bool   `json:"is_default,omitempty"`
}

// ValidationRules 字段校验规则（从FieldDefinition.ValidationRules解析）
type ValidationRules struct {
	MaxLength int      `json:"max_length,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
}

// Rules 解析校验规则，未配置时返回零值规则
func (d *FieldDefinition) Rules() (ValidationRules, error) {
	var rules ValidationRules
	if len(d.ValidationRules) == 0 || string(d.ValidationRules) == "null" {
		return rules, nil
	}
	if err := json.Unmarshal(d.ValidationRules, &rules); err != nil {
		return rules, err
	}
	return rules, nil
}
