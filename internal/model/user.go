package model

import (
	"strings"
	"time"
)

// User 用户表 — 对应 users
type User struct {
	ID           string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email        string     `gorm:"type:varchar(256);not null"                     json:"email"      validate:"required,email,max=256"`
	FirstName    string     `gorm:"type:varchar(256);not null"                     json:"first_name" validate:"required,max=256"`
	LastName     *string    `gorm:"type:varchar(256)"                              json:"last_name"  validate:"omitempty,max=256"`
	PasswordHash string     `gorm:"type:varchar(255);not null"                     json:"-"`
	IsActive     bool       `gorm:"not null;default:true"                          json:"is_active"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	DateJoined   time.Time  `gorm:"not null;autoCreateTime"                        json:"date_joined"`

	// 关联
	Roles   []UserRole `gorm:"foreignKey:UserID" json:"roles,omitempty"   validate:"-"`
	Profile *Profile   `gorm:"foreignKey:UserID" json:"profile,omitempty" validate:"-"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// FullName 名 + 姓，去掉末尾空白
func (u *User) FullName() string {
	last := ""
	if u.LastName != nil {
		last = strings.TrimSpace(*u.LastName)
	}
	return strings.TrimRight(strings.TrimSpace(u.FirstName)+" "+last, " ")
}

// NormalizeEmail 域名部分转小写
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

// Role 用户角色编码
type Role int16

const (
	RoleManager     Role = 1
	RoleStaffMember Role = 2
)

var roleLabels = map[Role]string{
	RoleManager:     "Manager",
	RoleStaffMember: "Staff Member",
}

// String 角色展示名
func (r Role) String() string {
	if l, ok := roleLabels[r]; ok {
		return l
	}
	return "Unknown"
}

// Valid 是否为已定义角色
func (r Role) Valid() bool {
	_, ok := roleLabels[r]
	return ok
}

// ParseRole 解析命令行/配置中的角色名（manager | staff | staff_member）
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "manager":
		return RoleManager, true
	case "staff", "staff_member", "staff member":
		return RoleStaffMember, true
	}
	return 0, false
}

// UserRole 用户角色表 — 对应 user_roles
// 同一用户可同时拥有两种角色；(user_id, role) 在未删除行中唯一
type UserRole struct {
	ID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID string `gorm:"type:uuid;not null"                             json:"user_id" validate:"required"`
	Role   Role   `gorm:"type:smallint;not null"                         json:"role"    validate:"role"`
	LogFields
}

func (UserRole) TableName() string { return "user_roles" }

// Profile 个人资料表 — 对应 profiles（与 users 一对一）
type Profile struct {
	ID          string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID      string  `gorm:"type:uuid;not null"                             json:"user_id"      validate:"required"`
	PhoneNumber string  `gorm:"type:varchar(16);not null"                      json:"phone_number" validate:"required,e164"`
	Photo       *string `gorm:"type:varchar(512)"                              json:"photo"        validate:"omitempty,image_ext"`
	LogFields
}

func (Profile) TableName() string { return "profiles" }
