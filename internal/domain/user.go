package domain

import "time"

// 角色枚举（与 users.role 列一致）
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:64;not null" json:"name"`
	Email    string `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Password string `gorm:"size:191;not null" json:"-"` // 带 {scheme} 前缀的凭证
	Role     string `gorm:"size:16;not null;default:USER" json:"role"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// DeletedUser 删除用户的归档快照：删除时写一次，之后不再变更
type DeletedUser struct {
	ID       uint   `gorm:"primaryKey;autoIncrement:false" json:"id"` // 沿用原 users.id
	Name     string `gorm:"size:64;not null" json:"name"`
	Email    string `gorm:"size:191;not null" json:"email"`
	Password string `gorm:"size:191;not null" json:"-"`
	Role     string `gorm:"size:16;not null" json:"role"`

	ArchivedAt time.Time `gorm:"autoCreateTime" json:"archivedAt"`
}

func (DeletedUser) TableName() string { return "deleted_users" }
