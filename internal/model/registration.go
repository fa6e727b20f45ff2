package model

import (
	"time"

	"github.com/google/uuid"
)

// RegistrationStatus 報名狀態類型
type RegistrationStatus string

const (
	RegistrationStatusPending   RegistrationStatus = "pending"
	RegistrationStatusConfirmed RegistrationStatus = "confirmed"
	RegistrationStatusCancelled RegistrationStatus = "cancelled"
	RegistrationStatusAttended  RegistrationStatus = "attended"
)

// IsValid 驗證狀態是否有效
func (s RegistrationStatus) IsValid() bool {
	switch s {
	case RegistrationStatusPending, RegistrationStatusConfirmed,
		RegistrationStatusCancelled, RegistrationStatusAttended:
		return true
	}
	return false
}

// CanTransitionTo 檢查是否可以轉換到目標狀態
func (s RegistrationStatus) CanTransitionTo(target RegistrationStatus) bool {
	transitions := map[RegistrationStatus][]RegistrationStatus{
		RegistrationStatusPending:   {RegistrationStatusConfirmed, RegistrationStatusCancelled},
		RegistrationStatusConfirmed: {RegistrationStatusCancelled, RegistrationStatusAttended},
		RegistrationStatusCancelled: {},
		RegistrationStatusAttended:  {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == target {
			return true
		}
	}
	return false
}

// CountsTowardCapacity 此狀態是否佔用活動名額。只有 cancelled 不佔名額：
// attended 的名額由活動結束的結算流程處理，在那之前仍視為佔用。
func (s RegistrationStatus) CountsTowardCapacity() bool {
	return s != RegistrationStatusCancelled
}

// Registration 報名模型
type Registration struct {
	ID             int                `json:"id" db:"id"`
	RegistrationID uuid.UUID          `json:"registration_id" db:"registration_id"`
	UserID         int                `json:"user_id" db:"user_id"`
	EventID        int                `json:"event_id" db:"event_id"`
	Status         RegistrationStatus `json:"status" db:"status"`
	Notes          *string            `json:"notes,omitempty" db:"notes"`
	RegisteredAt   time.Time          `json:"registered_at" db:"registered_at"`
	UpdatedAt      time.Time          `json:"updated_at" db:"updated_at"`
}

// IsOwnedBy 檢查報名是否屬於指定使用者
func (r *Registration) IsOwnedBy(userID int) bool {
	return r.UserID == userID
}

// RegistrationDetail 查詢層用的報名視圖，帶出使用者與活動的讀取側 join 結果
type RegistrationDetail struct {
	Registration
	UserName   string    `json:"user_name" db:"user_name"`
	UserEmail  string    `json:"user_email" db:"user_email"`
	EventUUID  uuid.UUID `json:"event_uuid" db:"event_uuid"`
	EventTitle string    `json:"event_title" db:"event_title"`
	EventStart time.Time `json:"event_start" db:"event_start"`
}

// UpdateRegistrationParams 管理者更新報名的參數。只開放備註；
// 狀態一律透過 Validate/Refuse/Cancel 轉換，避免繞過名額帳本。
type UpdateRegistrationParams struct {
	Notes *string
}
