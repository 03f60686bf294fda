package repository

import (
	"errors"
	"time"

	"github.com/yanryp/servicedesk-sub002/internal/model"
	"gorm.io/gorm"
)

// ErrStaleTicketStatus 工单状态已被并发操作改变（乐观锁更新0行）
var ErrStaleTicketStatus = errors.New("ticket status changed concurrently")

type TicketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// TicketFilter 工单列表过滤条件
type TicketFilter struct {
	Status    model.TicketStatus
	ItemID    uint
	CreatedBy string
	Keyword   string
	Page      int
	PageSize  int
}

// CreateWithValues 原子化创建工单及其字段答案和审批记录
// 要么全部写入，要么全部不写，不存在部分创建的工单
func (r *TicketRepository) CreateWithValues(ticket *model.Ticket, values []model.TicketFieldValue, approval *model.BusinessApproval) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ticket).Error; err != nil {
			return err
		}

		for i := range values {
			values[i].TicketID = ticket.ID
		}
		if len(values) > 0 {
			if err := tx.Create(&values).Error; err != nil {
				return err
			}
		}

		if approval != nil {
			approval.TicketID = ticket.ID
			if err := tx.Create(approval).Error; err != nil {
				return err
			}
		}

		return tx.Create(&model.TicketStatusLog{
			TicketID: ticket.ID,
			ToStatus: ticket.Status,
			ActorID:  ticket.CreatedBy,
			Comment:  "ticket created",
		}).Error
	})
}

// FindByID 根据ID查找工单（带关联数据）
func (r *TicketRepository) FindByID(id uint) (*model.Ticket, error) {
	var ticket model.Ticket
	err := r.db.
		Preload("Item").
		Preload("Template").
		Preload("FieldValues").
		Preload("Approval").
		Where("id = ?", id).
		First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// FindByIdempotencyKey 根据幂等键查找工单（重复提交时返回已有工单）
func (r *TicketRepository) FindByIdempotencyKey(key string) (*model.Ticket, error) {
	var ticket model.Ticket
	err := r.db.
		Preload("Item").
		Preload("Approval").
		Where("idempotency_key = ?", key).
		First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// List 分页查询工单列表
func (r *TicketRepository) List(filter TicketFilter) ([]model.Ticket, int64, error) {
	query := r.db.Model(&model.Ticket{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ItemID > 0 {
		query = query.Where("item_id = ?", filter.ItemID)
	}
	if filter.CreatedBy != "" {
		query = query.Where("created_by = ?", filter.CreatedBy)
	}
	if filter.Keyword != "" {
		query = query.Where("title LIKE ? OR ticket_number LIKE ?",
			"%"+filter.Keyword+"%", "%"+filter.Keyword+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	var tickets []model.Ticket
	err := query.
		Preload("Item").
		Preload("Approval").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Order("created_at DESC").
		Find(&tickets).Error
	return tickets, total, err
}

// DecideApproval 原子化写入审批决定并迁移工单状态
// 工单状态和审批行的更新都带前置状态守卫：并发的两次审批只有一次成功，
// 另一次观察到已决定的状态，返回 ErrStaleTicketStatus
func (r *TicketRepository) DecideApproval(ticketID uint, reviewerID string, approved bool, comments string) error {
	targetStatus := model.StatusOpen
	approvalStatus := model.ApprovalApproved
	if !approved {
		targetStatus = model.StatusRejected
		approvalStatus = model.ApprovalRejected
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Ticket{}).
			Where("id = ? AND status = ?", ticketID, model.StatusPendingApproval).
			Update("status", targetStatus)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStaleTicketStatus
		}

		now := time.Now()
		result = tx.Model(&model.BusinessApproval{}).
			Where("ticket_id = ? AND status = ?", ticketID, model.ApprovalPending).
			Updates(map[string]interface{}{
				"status":      approvalStatus,
				"reviewer_id": reviewerID,
				"comments":    comments,
				"decided_at":  now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// 工单处于pending_approval但审批行已被决定，属于不一致状态，回滚
			return ErrStaleTicketStatus
		}

		return tx.Create(&model.TicketStatusLog{
			TicketID:   ticketID,
			FromStatus: model.StatusPendingApproval,
			ToStatus:   targetStatus,
			ActorID:    reviewerID,
			Comment:    comments,
		}).Error
	})
}

// UpdateStatus 带前置状态守卫的状态迁移
// assignee 非nil时同时更新处理人（open→in_progress 认领时使用）
func (r *TicketRepository) UpdateStatus(ticketID uint, from, to model.TicketStatus, actorID, comment string, assignee *string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": to}
		if assignee != nil {
			updates["assignee_id"] = *assignee
		}

		result := tx.Model(&model.Ticket{}).
			Where("id = ? AND status = ?", ticketID, from).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStaleTicketStatus
		}

		return tx.Create(&model.TicketStatusLog{
			TicketID:   ticketID,
			FromStatus: from,
			ToStatus:   to,
			ActorID:    actorID,
			Comment:    comment,
		}).Error
	})
}

// ListStatusLogs 查询工单状态变更记录
func (r *TicketRepository) ListStatusLogs(ticketID uint) ([]model.TicketStatusLog, error) {
	var logs []model.TicketStatusLog
	err := r.db.Where("ticket_id = ?", ticketID).
		Order("created_at ASC, id ASC").
		Find(&logs).Error
	return logs, err
}
