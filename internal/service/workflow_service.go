package service

import (
	"errors"
	"fmt"

	"github.com/yanryp/servicedesk-sub002/internal/model"
	"github.com/yanryp/servicedesk-sub002/internal/repository"
	"github.com/yanryp/servicedesk-sub002/pkg/logger"
	"github.com/yanryp/servicedesk-sub002/pkg/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserStore 用户读取口，UserRepository实现
type UserStore interface {
	FindByID(id string) (*model.User, error)
}

// WorkflowService 审批决定与工单状态机
type WorkflowService struct {
	ticketRepo TicketStore
	userRepo   UserStore
	publisher  EventPublisher
}

func NewWorkflowService(
	ticketRepo TicketStore,
	userRepo UserStore,
	publisher EventPublisher,
) *WorkflowService {
	return &WorkflowService{
		ticketRepo: ticketRepo,
		userRepo:   userRepo,
		publisher:  publisher,
	}
}

// Approve 审批通过，工单进入open状态
func (s *WorkflowService) Approve(actor model.Actor, ticketID uint, comments string) (*model.Ticket, error) {
	return s.decide(actor, ticketID, true, comments)
}

// Reject 审批拒绝，工单进入rejected终态，拒绝意见必填
func (s *WorkflowService) Reject(actor model.Actor, ticketID uint, comments string) (*model.Ticket, error) {
	if comments == "" {
		return nil, fmt.Errorf("%w: rejection comments are required", ErrInvalidArgument)
	}
	return s.decide(actor, ticketID, false, comments)
}

func (s *WorkflowService) decide(actor model.Actor, ticketID uint, approved bool, comments string) (*model.Ticket, error) {
	ticket, err := s.ticketRepo.FindByID(ticketID)
	if err != nil {
		return nil, translateLookupError(err, "ticket", ticketID)
	}
	if ticket.Status != model.StatusPendingApproval {
		return nil, fmt.Errorf("%w: ticket %d is not pending approval", ErrInvalidTransition, ticketID)
	}

	requester, err := s.userRepo.FindByID(ticket.CreatedBy)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: requester %s of ticket %d", ErrNotFound, ticket.CreatedBy, ticketID)
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if err := authorizeApprover(actor, requester, &ticket.Item); err != nil {
		return nil, err
	}

	if err := s.ticketRepo.DecideApproval(ticketID, actor.ID, approved, comments); err != nil {
		if errors.Is(err, repository.ErrStaleTicketStatus) {
			return nil, fmt.Errorf("%w: ticket %d was decided concurrently", ErrInvalidTransition, ticketID)
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	result := "approved"
	if !approved {
		result = "rejected"
	}
	metrics.ApprovalDecisionsTotal.WithLabelValues(result).Inc()
	logger.Info("审批决定已记录",
		zap.Uint("ticket_id", ticketID),
		zap.String("reviewer", actor.ID),
		zap.String("result", result))

	updated, err := s.ticketRepo.FindByID(ticketID)
	if err != nil {
		return nil, translateLookupError(err, "ticket", ticketID)
	}
	if s.publisher != nil {
		s.publisher.Publish(EventTicketApprovalDecided, updated)
	}
	return updated, nil
}

// authorizeApprover 判定操作者是否有权审批该工单
// 管理员始终可审；经理必须是请求人的直属经理；
// 政府/监管相关的服务项还要求审批人具备业务审批资格
func authorizeApprover(actor model.Actor, requester *model.User, item *model.Item) error {
	if actor.Role == model.RoleAdmin {
		return nil
	}
	if actor.Role != model.RoleManager {
		return fmt.Errorf("%w: role %s cannot approve tickets", ErrUnauthorized, actor.Role)
	}
	if requester.ManagerID == nil || *requester.ManagerID != actor.ID {
		return fmt.Errorf("%w: approver is not the requester's direct manager", ErrUnauthorized)
	}
	if item.IsGovernmentRelated && !actor.IsBusinessReviewer {
		return fmt.Errorf("%w: government related items require a business reviewer", ErrUnauthorized)
	}
	return nil
}

// Transition 执行一次状态迁移
func (s *WorkflowService) Transition(actor model.Actor, ticketID uint, target model.TicketStatus, comment string) (*model.Ticket, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, target)
	}

	ticket, err := s.ticketRepo.FindByID(ticketID)
	if err != nil {
		return nil, translateLookupError(err, "ticket", ticketID)
	}

	// 审批阶段的迁移只能通过审批接口完成
	if ticket.Status == model.StatusPendingApproval {
		return nil, fmt.Errorf("%w: ticket %d is pending approval", ErrInvalidTransition, ticketID)
	}
	if !model.CanTransition(ticket.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, ticket.Status, target)
	}

	assignee, err := authorizeTransition(actor, ticket, target)
	if err != nil {
		return nil, err
	}

	if err := s.ticketRepo.UpdateStatus(ticketID, ticket.Status, target, actor.ID, comment, assignee); err != nil {
		if errors.Is(err, repository.ErrStaleTicketStatus) {
			return nil, fmt.Errorf("%w: ticket %d changed concurrently", ErrInvalidTransition, ticketID)
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	metrics.TransitionsTotal.WithLabelValues(string(target)).Inc()
	logger.Info("工单状态已迁移",
		zap.Uint("ticket_id", ticketID),
		zap.String("from", string(ticket.Status)),
		zap.String("to", string(target)),
		zap.String("actor", actor.ID))

	updated, err := s.ticketRepo.FindByID(ticketID)
	if err != nil {
		return nil, translateLookupError(err, "ticket", ticketID)
	}
	if s.publisher != nil {
		s.publisher.Publish(EventTicketStatusChanged, updated)
	}
	return updated, nil
}

// authorizeTransition 判定操作者是否有权执行该迁移
// 返回的assignee非nil时表示迁移同时变更工单处理人（技术员认领）
func authorizeTransition(actor model.Actor, ticket *model.Ticket, target model.TicketStatus) (*string, error) {
	isAdmin := actor.Role == model.RoleAdmin
	isAssignee := ticket.AssigneeID != nil && *ticket.AssigneeID == actor.ID

	switch {
	case ticket.Status == model.StatusOpen && target == model.StatusInProgress:
		// 技术员认领工单，成为处理人
		if actor.Role != model.RoleTechnician && !isAdmin {
			return nil, fmt.Errorf("%w: only technicians can claim open tickets", ErrUnauthorized)
		}
		id := actor.ID
		return &id, nil

	case ticket.Status == model.StatusInProgress:
		if !isAssignee && !isAdmin {
			return nil, fmt.Errorf("%w: only the assignee can update an in-progress ticket", ErrUnauthorized)
		}
		return nil, nil

	case ticket.Status == model.StatusPending && target == model.StatusInProgress:
		if !isAssignee && !isAdmin {
			return nil, fmt.Errorf("%w: only the assignee can resume a pending ticket", ErrUnauthorized)
		}
		return nil, nil

	case ticket.Status == model.StatusResolved && target == model.StatusClosed:
		if ticket.CreatedBy != actor.ID && !isAdmin {
			return nil, fmt.Errorf("%w: only the requester can close a resolved ticket", ErrUnauthorized)
		}
		return nil, nil
	}

	return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, ticket.Status, target)
}
