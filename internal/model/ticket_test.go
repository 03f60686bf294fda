package model

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from TicketStatus
		to   TicketStatus
		want bool
	}{
		{"审批通过进入待处理", StatusPendingApproval, StatusOpen, true},
		{"审批拒绝进入终态", StatusPendingApproval, StatusRejected, true},
		{"待处理被认领", StatusOpen, StatusInProgress, true},
		{"处理中挂起", StatusInProgress, StatusPending, true},
		{"处理中解决", StatusInProgress, StatusResolved, true},
		{"挂起恢复处理", StatusPending, StatusInProgress, true},
		{"已解决关闭", StatusResolved, StatusClosed, true},
		{"待处理不能直接解决", StatusOpen, StatusResolved, false},
		{"待处理不能跳过审批回退", StatusOpen, StatusPendingApproval, false},
		{"终态rejected不能复活", StatusRejected, StatusOpen, false},
		{"终态closed不能复活", StatusClosed, StatusInProgress, false},
		{"挂起不能直接解决", StatusPending, StatusResolved, false},
		{"已解决不能回到处理中", StatusResolved, StatusInProgress, false},
		{"不能原地迁移", StatusInProgress, StatusInProgress, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestTicketStatusIsTerminal(t *testing.T) {
	terminal := []TicketStatus{StatusRejected, StatusClosed}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s 应为终态", s)
		}
	}

	active := []TicketStatus{StatusOpen, StatusPendingApproval, StatusInProgress, StatusPending, StatusResolved}
	for _, s := range active {
		if s.IsTerminal() {
			t.Errorf("%s 不应为终态", s)
		}
	}
}

func TestTicketStatusValid(t *testing.T) {
	if !StatusOpen.Valid() {
		t.Error("open 应为合法状态")
	}
	if TicketStatus("archived").Valid() {
		t.Error("archived 不应为合法状态")
	}
	if TicketStatus("").Valid() {
		t.Error("空状态不应合法")
	}
}

func TestValidPriority(t *testing.T) {
	for _, p := range []string{PriorityLow, PriorityNormal, PriorityHigh, PriorityCritical} {
		if !ValidPriority(p) {
			t.Errorf("%s 应为合法优先级", p)
		}
	}
	if ValidPriority("urgent") {
		t.Error("urgent 不应为合法优先级")
	}
}

func TestFieldTypeIsChoice(t *testing.T) {
	choice := []FieldType{FieldTypeDropdown, FieldTypeCheckbox, FieldTypeRadio}
	for _, ft := range choice {
		if !ft.IsChoice() {
			t.Errorf("%s 应为选项类字段", ft)
		}
	}
	plain := []FieldType{FieldTypeText, FieldTypeTextarea, FieldTypeNumber, FieldTypeDate, FieldTypeDateTime}
	for _, ft := range plain {
		if ft.IsChoice() {
			t.Errorf("%s 不应为选项类字段", ft)
		}
	}
}
