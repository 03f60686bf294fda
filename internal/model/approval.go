package model

import "time"

// ApprovalStatus 审批状态
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// BusinessApproval 业务审批记录（需要审批的工单创建后始终恰好一条）
type BusinessApproval struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	TicketID   uint           `gorm:"not null;uniqueIndex" json:"ticket_id"`
	Status     ApprovalStatus `gorm:"type:varchar(20);default:pending;index" json:"status"`
	ReviewerID *string        `gorm:"type:varchar(36);index" json:"reviewer_id,omitempty"` // 审批前为空
	Comments   string         `gorm:"type:text" json:"comments"`
	DecidedAt  *time.Time     `json:"decided_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// TableName 指定表名
func (BusinessApproval) TableName() string {
	return "business_approvals"
}
