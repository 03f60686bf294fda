package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// APIRequestsTotal API请求总数
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// TicketsCreatedTotal 创建成功的工单总数
	TicketsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_created_total",
			Help: "Total number of tickets created",
		},
		[]string{"status"}, // open / pending_approval
	)

	// IntakeRejectedTotal 提交被拒绝的次数（按原因）
	IntakeRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_intake_rejected_total",
			Help: "Total number of rejected ticket intake requests",
		},
		[]string{"reason"}, // not_found / validation_failed / persistence
	)

	// ApprovalDecisionsTotal 审批决定总数
	ApprovalDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_approval_decisions_total",
			Help: "Total number of business approval decisions",
		},
		[]string{"result"}, // approved / rejected
	)

	// TransitionsTotal 状态迁移总数
	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_transitions_total",
			Help: "Total number of ticket status transitions",
		},
		[]string{"to"},
	)
)
