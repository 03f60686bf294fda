package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/yanryp/servicedesk-sub002/internal/model"
	"github.com/yanryp/servicedesk-sub002/internal/repository"
	"github.com/yanryp/servicedesk-sub002/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService 用户管理：管理员维护账号、汇报关系与业务审批资格
type UserService struct {
	userRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ListUsers 查询全部用户
func (s *UserService) ListUsers() ([]model.User, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return users, nil
}

// CreateUser 创建用户，用户名重复返回冲突
func (s *UserService) CreateUser(req *model.CreateUserRequest) (*model.User, error) {
	role := req.Role
	if role == "" {
		role = model.RoleRequester
	}
	if !model.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidArgument, req.Role)
	}

	if _, err := s.userRepo.FindByUsername(req.Username); err == nil {
		return nil, fmt.Errorf("%w: username %q already exists", ErrSchemaConflict, req.Username)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:                 uuid.New().String(),
		Username:           req.Username,
		Password:           string(hash),
		FullName:           req.FullName,
		Email:              req.Email,
		Role:               role,
		ManagerID:          req.ManagerID,
		UnitID:             req.UnitID,
		DepartmentID:       req.DepartmentID,
		IsBusinessReviewer: req.IsBusinessReviewer,
		Status:             "active",
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	logger.Info("用户创建成功",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("role", user.Role))
	return user, nil
}

// UpdateUser 更新用户的组织与权限属性
func (s *UserService) UpdateUser(id string, req *model.UpdateUserRequest) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if err := applyUserUpdate(user, req); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	logger.Info("用户信息已更新", zap.String("user_id", user.ID))
	return user, nil
}

// applyUserUpdate 将更新请求套用到用户记录，零值字段保持不变
func applyUserUpdate(user *model.User, req *model.UpdateUserRequest) error {
	if req.Role != "" {
		if !model.ValidRole(req.Role) {
			return fmt.Errorf("%w: unknown role %q", ErrInvalidArgument, req.Role)
		}
		user.Role = req.Role
	}
	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.ManagerID != nil {
		if *req.ManagerID == "" {
			user.ManagerID = nil
		} else {
			user.ManagerID = req.ManagerID
		}
	}
	if req.UnitID != "" {
		user.UnitID = req.UnitID
	}
	if req.DepartmentID != "" {
		user.DepartmentID = req.DepartmentID
	}
	if req.IsBusinessReviewer != nil {
		user.IsBusinessReviewer = *req.IsBusinessReviewer
	}
	if req.Status != "" {
		user.Status = req.Status
	}
	return nil
}
