package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/yanryp/servicedesk-sub002/internal/model"
	"github.com/yanryp/servicedesk-sub002/internal/repository"
	"gorm.io/gorm"
)

// fakeTicketStore 内存工单存储，按字段配置各方法的行为
type fakeTicketStore struct {
	ticket    *model.Ticket // FindByID返回
	existing  *model.Ticket // 幂等键命中时返回
	hitBefore bool          // 首次提交前幂等键即命中
	createErr error
	decideErr error
	updateErr error
	creates   int
	decides   int
}

func (f *fakeTicketStore) CreateWithValues(ticket *model.Ticket, values []model.TicketFieldValue, approval *model.BusinessApproval) error {
	f.creates++
	if f.createErr != nil {
		return f.createErr
	}
	ticket.ID = 42
	return nil
}

func (f *fakeTicketStore) FindByID(id uint) (*model.Ticket, error) {
	if f.ticket != nil && f.ticket.ID == id {
		return f.ticket, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTicketStore) FindByIdempotencyKey(key string) (*model.Ticket, error) {
	if f.existing != nil && (f.hitBefore || f.creates > 0) {
		return f.existing, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTicketStore) List(filter repository.TicketFilter) ([]model.Ticket, int64, error) {
	return nil, 0, nil
}

func (f *fakeTicketStore) ListStatusLogs(ticketID uint) ([]model.TicketStatusLog, error) {
	return nil, nil
}

func (f *fakeTicketStore) DecideApproval(ticketID uint, reviewerID string, approved bool, comments string) error {
	f.decides++
	return f.decideErr
}

func (f *fakeTicketStore) UpdateStatus(ticketID uint, from, to model.TicketStatus, actorID, comment string, assignee *string) error {
	return f.updateErr
}

// fakeCatalogReader 内存目录读取口
type fakeCatalogReader struct {
	item     *model.Item
	template *model.Template
}

func (f *fakeCatalogReader) GetItem(id uint) (*model.Item, error) {
	if f.item == nil || f.item.ID != id {
		return nil, fmt.Errorf("%w: item %d", ErrNotFound, id)
	}
	return f.item, nil
}

func (f *fakeCatalogReader) GetTemplate(id uint) (*model.Template, error) {
	if f.template == nil || f.template.ID != id {
		return nil, fmt.Errorf("%w: template %d", ErrNotFound, id)
	}
	return f.template, nil
}

func (f *fakeCatalogReader) ResolveOptions(def *model.FieldDefinition) ([]model.FieldOption, error) {
	return nil, nil
}

// fakeFieldStore 无字段定义的表单
type fakeFieldStore struct{}

func (fakeFieldStore) FindByOwner(owner model.OwnerRef, includeDeprecated bool) ([]model.FieldDefinition, error) {
	return nil, nil
}

func TestComputeRequiresApproval(t *testing.T) {
	tests := []struct {
		name     string
		item     *model.Item
		template *model.Template
		want     bool
	}{
		{"普通服务项无模板", &model.Item{}, nil, false},
		{"普通服务项普通模板", &model.Item{}, &model.Template{}, false},
		{"模板要求审批", &model.Item{}, &model.Template{RequiresBusinessApproval: true}, true},
		{"服务项强制审批", &model.Item{RequiresGovernmentApproval: true}, nil, true},
		{"政府相关服务项强制审批", &model.Item{IsGovernmentRelated: true}, nil, true},
		{"政府相关覆盖模板配置", &model.Item{IsGovernmentRelated: true}, &model.Template{RequiresBusinessApproval: false}, true},
		{"两处都要求审批", &model.Item{RequiresGovernmentApproval: true}, &model.Template{RequiresBusinessApproval: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := computeRequiresApproval(tt.item, tt.template); got != tt.want {
				t.Errorf("computeRequiresApproval() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerateTicketNumber(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		num := generateTicketNumber()
		if !strings.HasPrefix(num, "SR-") {
			t.Fatalf("工单号应以SR-开头，实际 %q", num)
		}
		if seen[num] {
			t.Fatalf("工单号重复: %q", num)
		}
		seen[num] = true
	}
}

func TestCheckIntakeTarget(t *testing.T) {
	tests := []struct {
		name     string
		item     *model.Item
		template *model.Template
		wantErr  error
	}{
		{"启用的服务项可提单", &model.Item{ID: 1, IsActive: true}, nil, nil},
		{"停用的服务项视为不存在", &model.Item{ID: 1, IsActive: false}, nil, ErrNotFound},
		{"可见模板可提单", &model.Item{ID: 1, IsActive: true}, &model.Template{ID: 5, ItemID: 1, IsVisible: true}, nil},
		{"隐藏模板视为不存在", &model.Item{ID: 1, IsActive: true}, &model.Template{ID: 5, ItemID: 1, IsVisible: false}, ErrNotFound},
		{"模板归属不符属于请求错误", &model.Item{ID: 1, IsActive: true}, &model.Template{ID: 5, ItemID: 2, IsVisible: true}, ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkIntakeTarget(tt.item, tt.template)
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

func TestCreateTicketInactiveItemNotFound(t *testing.T) {
	store := &fakeTicketStore{}
	svc := NewIntakeService(store, &fakeCatalogReader{
		item: &model.Item{ID: 1, IsActive: false},
	}, fakeFieldStore{}, nil)

	_, err := svc.CreateTicket(model.Actor{ID: "u-req", Role: model.RoleRequester}, &model.CreateTicketRequest{
		ItemID: 1,
		Title:  "ATM终端故障",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("停用服务项提单应返回ErrNotFound，实际 %v", err)
	}
	if store.creates != 0 {
		t.Errorf("不应写入工单，实际创建 %d 次", store.creates)
	}
}

func TestCreateTicketHiddenTemplateNotFound(t *testing.T) {
	templateID := uint(5)
	store := &fakeTicketStore{}
	svc := NewIntakeService(store, &fakeCatalogReader{
		item:     &model.Item{ID: 1, IsActive: true},
		template: &model.Template{ID: templateID, ItemID: 1, IsVisible: false},
	}, fakeFieldStore{}, nil)

	_, err := svc.CreateTicket(model.Actor{ID: "u-req", Role: model.RoleRequester}, &model.CreateTicketRequest{
		ItemID:     1,
		TemplateID: &templateID,
		Title:      "ATM终端故障",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("隐藏模板提单应返回ErrNotFound，实际 %v", err)
	}
}

func TestCreateTicketIdempotency(t *testing.T) {
	existing := &model.Ticket{ID: 7, TicketNumber: "SR-FIRST", Status: model.StatusOpen}
	catalog := &fakeCatalogReader{item: &model.Item{ID: 1, IsActive: true}}
	actor := model.Actor{ID: "u-req", Role: model.RoleRequester}
	req := &model.CreateTicketRequest{ItemID: 1, Title: "ATM终端故障", IdempotencyKey: "key-1"}

	t.Run("提交前命中幂等键返回已有工单", func(t *testing.T) {
		store := &fakeTicketStore{existing: existing, hitBefore: true}
		svc := NewIntakeService(store, catalog, fakeFieldStore{}, nil)

		ticket, err := svc.CreateTicket(actor, req)
		if err != nil {
			t.Fatalf("期望返回已有工单，实际错误: %v", err)
		}
		if ticket.ID != existing.ID {
			t.Errorf("应返回首次创建的工单 %d，实际 %d", existing.ID, ticket.ID)
		}
		if store.creates != 0 {
			t.Errorf("不应再次写入工单，实际创建 %d 次", store.creates)
		}
	})

	t.Run("并发撞唯一索引时返回首建工单", func(t *testing.T) {
		store := &fakeTicketStore{
			existing:  existing,
			createErr: errors.New("duplicate key value violates unique constraint"),
		}
		svc := NewIntakeService(store, catalog, fakeFieldStore{}, nil)

		ticket, err := svc.CreateTicket(actor, req)
		if err != nil {
			t.Fatalf("唯一索引冲突应回查并返回首建工单，实际错误: %v", err)
		}
		if ticket.ID != existing.ID {
			t.Errorf("应返回首次创建的工单 %d，实际 %d", existing.ID, ticket.ID)
		}
		if store.creates != 1 {
			t.Errorf("应只尝试写入一次，实际 %d 次", store.creates)
		}
	})
}

func TestValidationFailedError(t *testing.T) {
	err := &ValidationFailedError{Errors: []FieldError{
		{Field: "branch", Code: ErrCodeRequired},
		{Field: "quantity", Code: ErrCodeOutOfRange},
	}}
	if !strings.Contains(err.Error(), "2") {
		t.Errorf("错误信息应包含字段错误数量，实际 %q", err.Error())
	}
}
