package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yanryp/servicedesk-sub002/internal/model"
	"github.com/yanryp/servicedesk-sub002/internal/repository"
	"github.com/yanryp/servicedesk-sub002/pkg/logger"
	"github.com/yanryp/servicedesk-sub002/pkg/metrics"
	"github.com/yanryp/servicedesk-sub002/pkg/redis"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 工单事件名
const (
	EventTicketCreated         = "ticket.created"
	EventTicketApprovalDecided = "ticket.approval_decided"
	EventTicketStatusChanged   = "ticket.status_changed"
)

// EventPublisher 工单事件发布接口，通知管理器实现
type EventPublisher interface {
	Publish(event string, payload interface{})
}

// TicketStore 工单持久化接口，TicketRepository实现
type TicketStore interface {
	CreateWithValues(ticket *model.Ticket, values []model.TicketFieldValue, approval *model.BusinessApproval) error
	FindByID(id uint) (*model.Ticket, error)
	FindByIdempotencyKey(key string) (*model.Ticket, error)
	List(filter repository.TicketFilter) ([]model.Ticket, int64, error)
	ListStatusLogs(ticketID uint) ([]model.TicketStatusLog, error)
	DecideApproval(ticketID uint, reviewerID string, approved bool, comments string) error
	UpdateStatus(ticketID uint, from, to model.TicketStatus, actorID, comment string, assignee *string) error
}

// CatalogReader 受理流程需要的目录读取口，CatalogService实现
type CatalogReader interface {
	GetItem(id uint) (*model.Item, error)
	GetTemplate(id uint) (*model.Template, error)
	ResolveOptions(def *model.FieldDefinition) ([]model.FieldOption, error)
}

// FieldDefinitionStore 字段定义读取口，FieldDefinitionRepository实现
type FieldDefinitionStore interface {
	FindByOwner(owner model.OwnerRef, includeDeprecated bool) ([]model.FieldDefinition, error)
}

// IntakeService 工单受理：校验动态表单、计算审批需求、原子落库
type IntakeService struct {
	ticketRepo TicketStore
	catalog    CatalogReader
	fieldRepo  FieldDefinitionStore
	publisher  EventPublisher
}

func NewIntakeService(
	ticketRepo TicketStore,
	catalog CatalogReader,
	fieldRepo FieldDefinitionStore,
	publisher EventPublisher,
) *IntakeService {
	return &IntakeService{
		ticketRepo: ticketRepo,
		catalog:    catalog,
		fieldRepo:  fieldRepo,
		publisher:  publisher,
	}
}

// CreateTicket 受理一次服务请求
// 校验失败返回*ValidationFailedError并携带全部字段错误；
// 携带幂等键的重复提交返回首次创建的工单
func (s *IntakeService) CreateTicket(actor model.Actor, req *model.CreateTicketRequest) (*model.Ticket, error) {
	if req.IdempotencyKey != "" {
		if existing := s.findByIdempotencyKey(req.IdempotencyKey); existing != nil {
			logger.Info("重复提交命中幂等键，返回已有工单",
				zap.String("key", req.IdempotencyKey),
				zap.Uint("ticket_id", existing.ID))
			return existing, nil
		}
	}

	item, err := s.catalog.GetItem(req.ItemID)
	if err != nil {
		return nil, rejectIfNotFound(err)
	}

	var template *model.Template
	if req.TemplateID != nil {
		template, err = s.catalog.GetTemplate(*req.TemplateID)
		if err != nil {
			return nil, rejectIfNotFound(err)
		}
	}
	if err := checkIntakeTarget(item, template); err != nil {
		return nil, rejectIfNotFound(err)
	}

	priority := req.Priority
	if priority == "" {
		priority = model.PriorityNormal
	}
	if !model.ValidPriority(priority) {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidArgument, req.Priority)
	}

	values, verr := s.validateFieldValues(item, template, req.FieldValues)
	if verr != nil {
		metrics.IntakeRejectedTotal.WithLabelValues("validation_failed").Inc()
		return nil, verr
	}

	requiresApproval := computeRequiresApproval(item, template)

	status := model.StatusOpen
	if requiresApproval {
		status = model.StatusPendingApproval
	}

	ticket := &model.Ticket{
		TicketNumber:             generateTicketNumber(),
		ItemID:                   item.ID,
		TemplateID:               req.TemplateID,
		Title:                    req.Title,
		Description:              req.Description,
		Priority:                 priority,
		Status:                   status,
		RequiresBusinessApproval: requiresApproval,
		CreatedBy:                actor.ID,
	}
	if req.IdempotencyKey != "" {
		key := req.IdempotencyKey
		ticket.IdempotencyKey = &key
	}

	var approval *model.BusinessApproval
	if requiresApproval {
		approval = &model.BusinessApproval{Status: model.ApprovalPending}
	}

	if err := s.ticketRepo.CreateWithValues(ticket, values, approval); err != nil {
		// 并发重复提交撞唯一索引时返回首次创建的工单
		if req.IdempotencyKey != "" {
			if existing := s.findByIdempotencyKey(req.IdempotencyKey); existing != nil {
				return existing, nil
			}
		}
		metrics.IntakeRejectedTotal.WithLabelValues("persistence").Inc()
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.cacheIdempotencyKey(req.IdempotencyKey, ticket.ID)

	metrics.TicketsCreatedTotal.WithLabelValues(string(status)).Inc()
	logger.Info("工单创建成功",
		zap.String("ticket_number", ticket.TicketNumber),
		zap.Uint("item_id", item.ID),
		zap.String("status", string(status)),
		zap.Bool("requires_approval", requiresApproval),
		zap.String("created_by", actor.ID))

	if s.publisher != nil {
		s.publisher.Publish(EventTicketCreated, ticket)
	}
	return ticket, nil
}

// GetTicket 查询工单详情（请求人只能看自己的工单）
func (s *IntakeService) GetTicket(actor model.Actor, id uint) (*model.Ticket, error) {
	ticket, err := s.ticketRepo.FindByID(id)
	if err != nil {
		return nil, translateLookupError(err, "ticket", id)
	}
	if actor.Role == model.RoleRequester && ticket.CreatedBy != actor.ID {
		return nil, fmt.Errorf("%w: ticket %d belongs to another requester", ErrUnauthorized, id)
	}
	return ticket, nil
}

// ListTickets 分页查询工单（请求人只能看自己的工单）
func (s *IntakeService) ListTickets(actor model.Actor, filter repository.TicketFilter) ([]model.Ticket, int64, error) {
	if actor.Role == model.RoleRequester {
		filter.CreatedBy = actor.ID
	}
	return s.ticketRepo.List(filter)
}

// GetStatusLogs 查询工单状态变更记录
func (s *IntakeService) GetStatusLogs(actor model.Actor, ticketID uint) ([]model.TicketStatusLog, error) {
	if _, err := s.GetTicket(actor, ticketID); err != nil {
		return nil, err
	}
	return s.ticketRepo.ListStatusLogs(ticketID)
}

// validateFieldValues 校验提交的动态表单值
// 表单字段由生效归属方定义：指定模板时为模板，否则为服务项
// 汇总所有字段错误一次性返回，不在第一个错误处终止
func (s *IntakeService) validateFieldValues(item *model.Item, template *model.Template, submitted map[string]interface{}) ([]model.TicketFieldValue, error) {
	owner := model.ItemOwner(item.ID)
	if template != nil {
		owner = model.TemplateOwner(template.ID)
	}
	defs, err := s.fieldRepo.FindByOwner(owner, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	known := make(map[string]bool, len(defs))
	var fieldErrors []FieldError
	var values []model.TicketFieldValue

	for i := range defs {
		def := &defs[i]
		known[def.FieldName] = true

		var options []model.FieldOption
		if def.FieldType.IsChoice() {
			options, err = s.catalog.ResolveOptions(def)
			if err != nil {
				return nil, err
			}
		}

		normalized, ferr := ValidateField(def, submitted[def.FieldName], options)
		if ferr != nil {
			fieldErrors = append(fieldErrors, *ferr)
			continue
		}
		if normalized == "" && !def.IsRequired {
			continue
		}
		values = append(values, model.TicketFieldValue{
			FieldDefinitionID: def.ID,
			FieldName:         def.FieldName,
			Value:             normalized,
		})
	}

	for name := range submitted {
		if !known[name] {
			fieldErrors = append(fieldErrors, FieldError{
				Field:   name,
				Code:    ErrCodeUnknownField,
				Message: fmt.Sprintf("字段 %s 不属于该服务项的表单", name),
			})
		}
	}

	if len(fieldErrors) > 0 {
		return nil, &ValidationFailedError{Errors: fieldErrors}
	}
	return values, nil
}

// checkIntakeTarget 校验服务项/模板可被提单
// 停用的服务项和隐藏的模板对提单人不可见，按不存在处理；
// 模板归属不符属于请求本身的错误
func checkIntakeTarget(item *model.Item, template *model.Template) error {
	if !item.IsActive {
		return fmt.Errorf("%w: item %d is not active", ErrNotFound, item.ID)
	}
	if template == nil {
		return nil
	}
	if template.ItemID != item.ID {
		return fmt.Errorf("%w: template %d does not belong to item %d", ErrInvalidArgument, template.ID, item.ID)
	}
	if !template.IsVisible {
		return fmt.Errorf("%w: template %d is not visible", ErrNotFound, template.ID)
	}
	return nil
}

// rejectIfNotFound 对不存在的受理目标计一次拒绝指标后原样返回错误
func rejectIfNotFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		metrics.IntakeRejectedTotal.WithLabelValues("not_found").Inc()
	}
	return err
}

// computeRequiresApproval 计算工单是否需要业务审批
// 模板要求审批、服务项强制审批、服务项政府/监管相关三者任一满足即需要，
// 结果在创建时快照到工单上，此后配置变更不影响已有工单
func computeRequiresApproval(item *model.Item, template *model.Template) bool {
	if item.RequiresGovernmentApproval || item.IsGovernmentRelated {
		return true
	}
	return template != nil && template.RequiresBusinessApproval
}

// generateTicketNumber 生成工单号，时间戳保证大致有序，uuid片段保证唯一
func generateTicketNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("SR-%s-%s", time.Now().Format("20060102150405"), suffix)
}

// findByIdempotencyKey 按幂等键查找已创建的工单，查不到返回nil
// 先查Redis缓存的 键->工单ID 映射，未命中或Redis不可用时回落到数据库
func (s *IntakeService) findByIdempotencyKey(key string) *model.Ticket {
	if redis.IsEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		cached, err := redis.GetClient().Get(ctx, idempotencyCacheKey(key)).Result()
		cancel()
		if err == nil {
			if id, perr := strconv.ParseUint(cached, 10, 32); perr == nil {
				if ticket, ferr := s.ticketRepo.FindByID(uint(id)); ferr == nil {
					return ticket
				}
			}
		}
	}

	ticket, err := s.ticketRepo.FindByIdempotencyKey(key)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("幂等键查询失败", zap.String("key", key), zap.Error(err))
		}
		return nil
	}
	return ticket
}

// idempotencyCacheKey 幂等键在Redis中的缓存键
func idempotencyCacheKey(key string) string {
	return "intake:idem:" + key
}

// cacheIdempotencyKey 将 幂等键->工单ID 写入Redis加速后续重复提交判定
// Redis不可用时静默跳过，数据库唯一索引仍然兜底
func (s *IntakeService) cacheIdempotencyKey(key string, ticketID uint) {
	if key == "" || !redis.IsEnabled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := redis.GetClient().SetNX(ctx, idempotencyCacheKey(key), ticketID, 24*time.Hour).Err(); err != nil {
		logger.Warn("幂等键写入Redis失败", zap.String("key", key), zap.Error(err))
	}
}
