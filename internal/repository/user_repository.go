package repository

import (
	"github.com/yanryp/servicedesk-sub002/internal/model"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create 创建用户
func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

// FindByID 根据ID查找用户
func (r *UserRepository) FindByID(id string) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername 根据用户名查找用户
func (r *UserRepository) FindByUsername(username string) (*model.User, error) {
	var user model.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindAll 查找所有用户
func (r *UserRepository) FindAll() ([]model.User, error) {
	var users []model.User
	err := r.db.Order("created_at ASC").Find(&users).Error
	return users, err
}

// Update 更新用户的组织与权限属性
// Select强制写入列，清除布尔/引用字段时零值也能落库
func (r *UserRepository) Update(user *model.User) error {
	return r.db.Model(&model.User{}).
		Where("id = ?", user.ID).
		Select("full_name", "email", "role", "manager_id",
			"unit_id", "department_id", "is_business_reviewer", "status").
		Updates(user).Error
}
