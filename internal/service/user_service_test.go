package service

import (
	"errors"
	"testing"

	"github.com/yanryp/servicedesk-sub002/internal/model"
)

func boolPtr(b bool) *bool { return &b }

func TestApplyUserUpdate(t *testing.T) {
	base := func() *model.User {
		return &model.User{
			ID:                 "u-1",
			FullName:           "张三",
			Role:               model.RoleRequester,
			ManagerID:          strPtr("u-mgr"),
			IsBusinessReviewer: true,
			Status:             "active",
		}
	}

	t.Run("零值字段保持不变", func(t *testing.T) {
		user := base()
		if err := applyUserUpdate(user, &model.UpdateUserRequest{}); err != nil {
			t.Fatalf("空更新不应报错: %v", err)
		}
		if user.FullName != "张三" || user.Role != model.RoleRequester || !user.IsBusinessReviewer {
			t.Errorf("空更新不应改动用户: %+v", user)
		}
	})

	t.Run("变更角色与审批资格", func(t *testing.T) {
		user := base()
		err := applyUserUpdate(user, &model.UpdateUserRequest{
			Role:               model.RoleManager,
			IsBusinessReviewer: boolPtr(false),
		})
		if err != nil {
			t.Fatalf("更新失败: %v", err)
		}
		if user.Role != model.RoleManager {
			t.Errorf("角色应为manager，实际 %s", user.Role)
		}
		if user.IsBusinessReviewer {
			t.Error("审批资格应被取消")
		}
	})

	t.Run("空字符串清除直属经理", func(t *testing.T) {
		user := base()
		if err := applyUserUpdate(user, &model.UpdateUserRequest{ManagerID: strPtr("")}); err != nil {
			t.Fatalf("更新失败: %v", err)
		}
		if user.ManagerID != nil {
			t.Errorf("直属经理应被清除，实际 %v", *user.ManagerID)
		}
	})

	t.Run("未知角色被拒绝", func(t *testing.T) {
		user := base()
		err := applyUserUpdate(user, &model.UpdateUserRequest{Role: "superuser"})
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("未知角色应返回ErrInvalidArgument，实际 %v", err)
		}
	})
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{model.RoleRequester, model.RoleTechnician, model.RoleManager, model.RoleAdmin} {
		if !model.ValidRole(role) {
			t.Errorf("角色 %s 应合法", role)
		}
	}
	if model.ValidRole("root") {
		t.Error("未定义的角色不应合法")
	}
}
