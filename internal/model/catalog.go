package model

import "time"

// 服务类型
const (
	ServiceTypeBusiness   = "business"   // 业务类
	ServiceTypeTechnical  = "technical"  // 技术类
	ServiceTypeGovernment = "government" // 政府/监管类
)

// Catalog 服务目录（相关服务项的分组）
type Catalog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	ServiceType string    `gorm:"type:varchar(20);default:business;index" json:"service_type"` // business, technical, government
	Department  string    `gorm:"type:varchar(100)" json:"department"`                         // 归属部门
	Description string    `gorm:"type:varchar(255)" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Catalog) TableName() string {
	return "catalogs"
}

// Item 服务项（用户可申请的具体服务）
type Item struct {
	ID                         uint      `gorm:"primaryKey" json:"id"`
	CatalogID                  uint      `gorm:"not null;index" json:"catalog_id"`
	Name                       string    `gorm:"type:varchar(200);not null" json:"name"`
	RequestType                string    `gorm:"type:varchar(50)" json:"request_type"`
	IsGovernmentRelated        bool      `gorm:"default:false" json:"is_government_related"`         // 政府/监管相关
	RequiresGovernmentApproval bool      `gorm:"default:false" json:"requires_government_approval"`  // 强制走审批
	IsActive                   bool      `gorm:"default:true;index" json:"is_active"`
	SortOrder                  int       `gorm:"default:0" json:"sort_order"`
	CreatedAt                  time.Time `json:"created_at"`
	UpdatedAt                  time.Time `json:"updated_at"`

	Catalog Catalog `gorm:"foreignKey:CatalogID" json:"catalog,omitempty"`
}

// TableName 指定表名
func (Item) TableName() string {
	return "catalog_items"
}

// Template 服务项的渠道变体模板（可选）
type Template struct {
	ID                       uint      `gorm:"primaryKey" json:"id"`
	ItemID                   uint      `gorm:"not null;index" json:"item_id"`
	Name                     string    `gorm:"type:varchar(200);not null" json:"name"`
	TemplateType             string    `gorm:"type:varchar(50)" json:"template_type"`
	RequiresBusinessApproval bool      `gorm:"default:false" json:"requires_business_approval"`
	RootCause                string    `gorm:"type:varchar(100)" json:"root_cause"` // 默认归类提示
	IssueType                string    `gorm:"type:varchar(100)" json:"issue_type"`
	IsVisible                bool      `gorm:"default:true;index" json:"is_visible"`
	SortOrder                int       `gorm:"default:0" json:"sort_order"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`

	Item Item `gorm:"foreignKey:ItemID" json:"item,omitempty"`
}

// TableName 指定表名
func (Template) TableName() string {
	return "catalog_item_templates"
}
