package model

import "time"

// UserRole 使用者角色
type UserRole string

const (
	UserRoleAdmin       UserRole = "admin"
	UserRoleParticipant UserRole = "participant"
)

// IsValid 驗證角色是否有效
func (r UserRole) IsValid() bool {
	return r == UserRoleAdmin || r == UserRoleParticipant
}

// User 使用者模型。身分驗證由上游閘道處理，core 只需要 id 與角色。
type User struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Role      UserRole  `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsAdmin 檢查是否為管理者
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
