package model

import "time"

// TicketStatus 工单状态（状态机见WorkflowService）
type TicketStatus string

const (
	StatusOpen            TicketStatus = "open"             // 待处理（无需审批或已通过审批）
	StatusPendingApproval TicketStatus = "pending_approval" // 等待业务审批
	StatusRejected        TicketStatus = "rejected"         // 审批拒绝（终态）
	StatusInProgress      TicketStatus = "in_progress"      // 处理中
	StatusPending         TicketStatus = "pending"          // 挂起（等待请求人补充信息等）
	StatusResolved        TicketStatus = "resolved"         // 已解决
	StatusClosed          TicketStatus = "closed"           // 已关闭（终态）
)

// Valid 判断状态是否合法
func (s TicketStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusPendingApproval, StatusRejected,
		StatusInProgress, StatusPending, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// IsTerminal 判断是否为终态
func (s TicketStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusClosed
}

// transitions 合法状态迁移表
var transitions = map[TicketStatus][]TicketStatus{
	StatusPendingApproval: {StatusOpen, StatusRejected},
	StatusOpen:            {StatusInProgress},
	StatusInProgress:      {StatusPending, StatusResolved},
	StatusPending:         {StatusInProgress},
	StatusResolved:        {StatusClosed},
}

// CanTransition 判断从from到to的迁移是否合法
func CanTransition(from, to TicketStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// 工单优先级
const (
	PriorityLow      = "low"
	PriorityNormal   = "normal"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// ValidPriority 判断优先级是否合法
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Ticket 服务请求工单
type Ticket struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	TicketNumber string       `gorm:"type:varchar(50);uniqueIndex" json:"ticket_number"`
	ItemID       uint         `gorm:"not null;index" json:"item_id"`
	TemplateID   *uint        `gorm:"index" json:"template_id,omitempty"`
	Title        string       `gorm:"type:varchar(200);not null" json:"title"`
	Description  string       `gorm:"type:text" json:"description"`
	Priority     string       `gorm:"type:varchar(20);default:normal" json:"priority"`
	Status       TicketStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	// RequiresBusinessApproval 创建时根据服务项/模板配置计算一次，此后不变
	RequiresBusinessApproval bool      `gorm:"not null" json:"requires_business_approval"`
	CreatedBy                string    `gorm:"type:varchar(36);not null;index" json:"created_by"`
	AssigneeID               *string   `gorm:"type:varchar(36);index" json:"assignee_id,omitempty"`
	IdempotencyKey           *string   `gorm:"type:varchar(100);uniqueIndex" json:"-"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`

	Item        Item               `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	Template    *Template          `gorm:"foreignKey:TemplateID" json:"template,omitempty"`
	FieldValues []TicketFieldValue `gorm:"foreignKey:TicketID" json:"field_values,omitempty"`
	Approval    *BusinessApproval  `gorm:"foreignKey:TicketID" json:"approval,omitempty"`
}

// TableName 指定表名
func (Ticket) TableName() string {
	return "tickets"
}

// TicketFieldValue 工单字段答案（与工单同事务创建，创建后不再修改）
type TicketFieldValue struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	TicketID          uint      `gorm:"not null;index" json:"ticket_id"`
	FieldDefinitionID uint      `gorm:"not null;index" json:"field_definition_id"`
	FieldName         string    `gorm:"type:varchar(100);not null" json:"field_name"` // 冗余存储，便于展示历史答案
	Value             string    `gorm:"type:text" json:"value"`                       // 规范化后的值
	CreatedAt         time.Time `json:"created_at"`

	FieldDefinition FieldDefinition `gorm:"foreignKey:FieldDefinitionID" json:"field_definition,omitempty"`
}

// TableName 指定表名
func (TicketFieldValue) TableName() string {
	return "ticket_field_values"
}

// TicketStatusLog 工单状态变更记录
type TicketStatusLog struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	TicketID   uint         `gorm:"not null;index" json:"ticket_id"`
	FromStatus TicketStatus `gorm:"type:varchar(20)" json:"from_status"`
	ToStatus   TicketStatus `gorm:"type:varchar(20);not null" json:"to_status"`
	ActorID    string       `gorm:"type:varchar(36)" json:"actor_id"`
	Comment    string       `gorm:"type:text" json:"comment"`
	CreatedAt  time.Time    `json:"created_at"`
}

// TableName 指定表名
func (TicketStatusLog) TableName() string {
	return "ticket_status_logs"
}

// CreateTicketRequest 工单创建请求
type CreateTicketRequest struct {
	ItemID         uint                   `json:"item_id" binding:"required"`
	TemplateID     *uint                  `json:"template_id,omitempty"`
	Title          string                 `json:"title" binding:"required"`
	Description    string                 `json:"description"`
	Priority       string                 `json:"priority"`
	FieldValues    map[string]interface{} `json:"field_values"`
	IdempotencyKey string                 `json:"idempotency_key,omitempty"`
}

// ApprovalActionRequest 审批操作请求
type ApprovalActionRequest struct {
	Comments string `json:"comments"`
}

// TransitionRequest 状态迁移请求
type TransitionRequest struct {
	TargetStatus TicketStatus `json:"target_status" binding:"required"`
	Comment      string       `json:"comment"`
}
