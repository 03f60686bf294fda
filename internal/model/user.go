package model

import (
	"time"
)

// 用户角色
const (
	RoleRequester  = "requester"  // 请求人
	RoleTechnician = "technician" // 技术员
	RoleManager    = "manager"    // 经理
	RoleAdmin      = "admin"      // 管理员
)

// ValidRole 角色取值是否合法
func ValidRole(role string) bool {
	switch role {
	case RoleRequester, RoleTechnician, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// User 平台用户
type User struct {
	ID                 string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username           string    `json:"username" gorm:"type:varchar(50);uniqueIndex;not null"`
	Password           string    `json:"-" gorm:"type:varchar(255);not null"` // 不在JSON中暴露
	FullName           string    `json:"fullName" gorm:"type:varchar(100)"`
	Email              string    `json:"email" gorm:"type:varchar(100);uniqueIndex"`
	Role               string    `json:"role" gorm:"type:varchar(20);default:'requester';index"` // requester, technician, manager, admin
	ManagerID          *string   `json:"managerId,omitempty" gorm:"type:varchar(36);index"`      // 直属经理（自引用）
	UnitID             string    `json:"unitId" gorm:"type:varchar(36);index"`
	DepartmentID       string    `json:"departmentId" gorm:"type:varchar(36);index"`
	IsBusinessReviewer bool      `json:"isBusinessReviewer" gorm:"type:boolean;default:false"` // 是否具备政府/监管类审批资格
	Status             string    `json:"status" gorm:"type:varchar(20);default:'active';index"`
	CreatedAt          time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt          time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// Actor 经过认证的操作者（由身份中间件从Token解析并注入上下文）
type Actor struct {
	ID                 string `json:"id"`
	Role               string `json:"role"`
	ManagerID          *string `json:"managerId,omitempty"`
	UnitID             string `json:"unitId"`
	DepartmentID       string `json:"departmentId"`
	IsBusinessReviewer bool   `json:"isBusinessReviewer"`
}

// ActorFromUser 从用户记录构建操作者
func ActorFromUser(u *User) Actor {
	return Actor{
		ID:                 u.ID,
		Role:               u.Role,
		ManagerID:          u.ManagerID,
		UnitID:             u.UnitID,
		DepartmentID:       u.DepartmentID,
		IsBusinessReviewer: u.IsBusinessReviewer,
	}
}

// CreateUserRequest 创建用户请求
type CreateUserRequest struct {
	Username           string  `json:"username" binding:"required"`
	Password           string  `json:"password" binding:"required,min=6"`
	FullName           string  `json:"fullName"`
	Email              string  `json:"email"`
	Role               string  `json:"role"`
	ManagerID          *string `json:"managerId"`
	UnitID             string  `json:"unitId"`
	DepartmentID       string  `json:"departmentId"`
	IsBusinessReviewer bool    `json:"isBusinessReviewer"`
}

// UpdateUserRequest 更新用户请求，零值字段保持不变
// ManagerID传空字符串表示清除直属经理
type UpdateUserRequest struct {
	FullName           string  `json:"fullName"`
	Email              string  `json:"email"`
	Role               string  `json:"role"`
	ManagerID          *string `json:"managerId"`
	UnitID             string  `json:"unitId"`
	DepartmentID       string  `json:"departmentId"`
	IsBusinessReviewer *bool   `json:"isBusinessReviewer"`
	Status             string  `json:"status"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
