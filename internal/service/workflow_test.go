package service

import (
	"errors"
	"testing"

	"github.com/yanryp/servicedesk-sub002/internal/model"
	"github.com/yanryp/servicedesk-sub002/internal/repository"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }

// fakeUserStore 内存用户读取口
type fakeUserStore struct {
	user *model.User
}

func (f *fakeUserStore) FindByID(id string) (*model.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.user, nil
}

func TestAuthorizeApprover(t *testing.T) {
	requester := &model.User{ID: "u-req", Role: model.RoleRequester, ManagerID: strPtr("u-mgr")}
	orphan := &model.User{ID: "u-orphan", Role: model.RoleRequester}
	normalItem := &model.Item{ID: 1}
	govItem := &model.Item{ID: 2, IsGovernmentRelated: true}

	tests := []struct {
		name      string
		actor     model.Actor
		requester *model.User
		item      *model.Item
		wantErr   error
	}{
		{"管理员始终可审", model.Actor{ID: "u-admin", Role: model.RoleAdmin}, requester, govItem, nil},
		{"直属经理可审普通工单", model.Actor{ID: "u-mgr", Role: model.RoleManager}, requester, normalItem, nil},
		{"非直属经理不可审", model.Actor{ID: "u-other-mgr", Role: model.RoleManager}, requester, normalItem, ErrUnauthorized},
		{"请求人无直属经理时经理不可审", model.Actor{ID: "u-mgr", Role: model.RoleManager}, orphan, normalItem, ErrUnauthorized},
		{"技术员不可审", model.Actor{ID: "u-tech", Role: model.RoleTechnician}, requester, normalItem, ErrUnauthorized},
		{"请求人不可审", model.Actor{ID: "u-req", Role: model.RoleRequester}, requester, normalItem, ErrUnauthorized},
		{"政府相关需要审批资格", model.Actor{ID: "u-mgr", Role: model.RoleManager}, requester, govItem, ErrUnauthorized},
		{"政府相关且有资格的直属经理可审", model.Actor{ID: "u-mgr", Role: model.RoleManager, IsBusinessReviewer: true}, requester, govItem, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authorizeApprover(tt.actor, tt.requester, tt.item)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("期望通过，实际错误: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuthorizeTransition(t *testing.T) {
	openTicket := &model.Ticket{ID: 1, Status: model.StatusOpen, CreatedBy: "u-req"}
	inProgress := &model.Ticket{ID: 2, Status: model.StatusInProgress, CreatedBy: "u-req", AssigneeID: strPtr("u-tech")}
	pending := &model.Ticket{ID: 3, Status: model.StatusPending, CreatedBy: "u-req", AssigneeID: strPtr("u-tech")}
	resolved := &model.Ticket{ID: 4, Status: model.StatusResolved, CreatedBy: "u-req", AssigneeID: strPtr("u-tech")}

	tech := model.Actor{ID: "u-tech", Role: model.RoleTechnician}
	otherTech := model.Actor{ID: "u-tech2", Role: model.RoleTechnician}
	req := model.Actor{ID: "u-req", Role: model.RoleRequester}
	admin := model.Actor{ID: "u-admin", Role: model.RoleAdmin}

	tests := []struct {
		name         string
		actor        model.Actor
		ticket       *model.Ticket
		target       model.TicketStatus
		wantErr      error
		wantAssignee bool
	}{
		{"技术员认领待处理工单并成为处理人", tech, openTicket, model.StatusInProgress, nil, true},
		{"管理员可认领", admin, openTicket, model.StatusInProgress, nil, true},
		{"请求人不能认领", req, openTicket, model.StatusInProgress, ErrUnauthorized, false},
		{"处理人可挂起", tech, inProgress, model.StatusPending, nil, false},
		{"处理人可解决", tech, inProgress, model.StatusResolved, nil, false},
		{"非处理人技术员不能更新处理中工单", otherTech, inProgress, model.StatusResolved, ErrUnauthorized, false},
		{"管理员可更新处理中工单", admin, inProgress, model.StatusResolved, nil, false},
		{"处理人可恢复挂起工单", tech, pending, model.StatusInProgress, nil, false},
		{"非处理人不能恢复挂起工单", otherTech, pending, model.StatusInProgress, ErrUnauthorized, false},
		{"请求人可关闭已解决工单", req, resolved, model.StatusClosed, nil, false},
		{"处理人不能替请求人关闭", tech, resolved, model.StatusClosed, ErrUnauthorized, false},
		{"管理员可关闭", admin, resolved, model.StatusClosed, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assignee, err := authorizeTransition(tt.actor, tt.ticket, tt.target)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("期望通过，实际错误: %v", err)
			}
			if tt.wantAssignee {
				if assignee == nil || *assignee != tt.actor.ID {
					t.Errorf("认领应设置处理人为 %s, 实际 %v", tt.actor.ID, assignee)
				}
			} else if assignee != nil {
				t.Errorf("不应设置处理人，实际 %v", *assignee)
			}
		})
	}
}

func TestDecideApprovalConcurrency(t *testing.T) {
	requester := &model.User{ID: "u-req", Role: model.RoleRequester, ManagerID: strPtr("u-mgr")}
	manager := model.Actor{ID: "u-mgr", Role: model.RoleManager}
	pending := &model.Ticket{
		ID:        7,
		Status:    model.StatusPendingApproval,
		CreatedBy: "u-req",
		Item:      model.Item{ID: 1, IsActive: true},
	}

	t.Run("先到的审批成功", func(t *testing.T) {
		store := &fakeTicketStore{ticket: pending}
		svc := NewWorkflowService(store, &fakeUserStore{user: requester}, nil)

		if _, err := svc.Approve(manager, pending.ID, "同意"); err != nil {
			t.Fatalf("期望审批成功，实际错误: %v", err)
		}
		if store.decides != 1 {
			t.Errorf("应写入一次审批决定，实际 %d 次", store.decides)
		}
	})

	t.Run("后到的审批观察到零行更新返回非法迁移", func(t *testing.T) {
		store := &fakeTicketStore{ticket: pending, decideErr: repository.ErrStaleTicketStatus}
		svc := NewWorkflowService(store, &fakeUserStore{user: requester}, nil)

		_, err := svc.Approve(manager, pending.ID, "同意")
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("并发落败方应返回ErrInvalidTransition，实际 %v", err)
		}
	})
}

func TestTransitionStaleStatus(t *testing.T) {
	open := &model.Ticket{ID: 9, Status: model.StatusOpen, CreatedBy: "u-req"}
	store := &fakeTicketStore{ticket: open, updateErr: repository.ErrStaleTicketStatus}
	svc := NewWorkflowService(store, &fakeUserStore{}, nil)

	_, err := svc.Transition(model.Actor{ID: "u-tech", Role: model.RoleTechnician}, open.ID, model.StatusInProgress, "")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("守卫更新零行应返回ErrInvalidTransition，实际 %v", err)
	}
}
