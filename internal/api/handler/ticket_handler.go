package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yanryp/servicedesk-sub002/internal/api/middleware"
	"github.com/yanryp/servicedesk-sub002/internal/model"
	"github.com/yanryp/servicedesk-sub002/internal/repository"
	"github.com/yanryp/servicedesk-sub002/internal/service"
)

type TicketHandler struct {
	intakeService   *service.IntakeService
	workflowService *service.WorkflowService
}

func NewTicketHandler(intakeService *service.IntakeService, workflowService *service.WorkflowService) *TicketHandler {
	return &TicketHandler{
		intakeService:   intakeService,
		workflowService: workflowService,
	}
}

// CreateTicket 提交服务请求
// POST /api/tickets
func (h *TicketHandler) CreateTicket(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, model.Error(http.StatusUnauthorized, "authentication required"))
		return
	}

	var req model.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		model.HandleError(c, http.StatusBadRequest, err, "无效的工单数据")
		return
	}

	ticket, err := h.intakeService.CreateTicket(actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.Success(ticket))
}

// ListTickets 分页查询工单
// GET /api/tickets?status=&item_id=&keyword=&page=&page_size=
func (h *TicketHandler) ListTickets(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, model.Error(http.StatusUnauthorized, "authentication required"))
		return
	}

	filter := repository.TicketFilter{
		Status:  model.TicketStatus(c.Query("status")),
		Keyword: c.Query("keyword"),
	}
	if raw := c.Query("item_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			filter.ItemID = uint(id)
		}
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	tickets, total, err := h.intakeService.ListTickets(actor, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	totalPages := int(total) / filter.PageSize
	if int(total)%filter.PageSize > 0 {
		totalPages++
	}
	c.JSON(http.StatusOK, model.Success(model.PaginatedResponse{
		Data:       tickets,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	}))
}

// GetTicket 查询工单详情
// GET /api/tickets/:id
func (h *TicketHandler) GetTicket(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, model.Error(http.StatusUnauthorized, "authentication required"))
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	ticket, err := h.intakeService.GetTicket(actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Success(ticket))
}

// GetStatusLogs 查询工单状态变更记录
// GET /api/tickets/:id/logs
func (h *TicketHandler) GetStatusLogs(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, model.Error(http.StatusUnauthorized, "authentication required"))
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	logs, err := h.intakeService.GetStatusLogs(actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Success(logs))
}

// Approve 审批通过
// POST /api/tickets/:id/approve
func (h *TicketHandler) Approve(c *gin.Context) {
	h.decide(c, true)
}

// Reject 审批拒绝
// POST /api/tickets/:id/reject
func (h *TicketHandler) Reject(c *gin.Context) {
	h.decide(c, false)
}

func (h *TicketHandler) decide(c *gin.Context, approve bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, model.Error(http.StatusUnauthorized, "authentication required"))
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req model.ApprovalActionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		model.HandleError(c, http.StatusBadRequest, err, "无效的审批请求")
		return
	}

	var ticket *model.Ticket
	var err error
	if approve {
		ticket, err = h.workflowService.Approve(actor, id, req.Comments)
	} else {
		ticket, err = h.workflowService.Reject(actor, id, req.Comments)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Success(ticket))
}

// Transition 执行状态迁移
// POST /api/tickets/:id/transition
func (h *TicketHandler) Transition(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, model.Error(http.StatusUnauthorized, "authentication required"))
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req model.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		model.HandleError(c, http.StatusBadRequest, err, "无效的迁移请求")
		return
	}

	ticket, err := h.workflowService.Transition(actor, id, req.TargetStatus, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Success(ticket))
}
