package model

import (
	"time"

	apperrors "go-event-registration/pkg/app_errors"

	"github.com/google/uuid"
)

// EventStatus 活動狀態類型
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusCancelled EventStatus = "cancelled"
	EventStatusCompleted EventStatus = "completed"
)

// IsValid 驗證狀態是否有效
func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusDraft, EventStatusPublished, EventStatusCancelled, EventStatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo 檢查是否可以轉換到目標狀態
func (s EventStatus) CanTransitionTo(target EventStatus) bool {
	transitions := map[EventStatus][]EventStatus{
		EventStatusDraft:     {EventStatusPublished, EventStatusCancelled},
		EventStatusPublished: {EventStatusCancelled, EventStatusCompleted},
		EventStatusCancelled: {},
		EventStatusCompleted: {},
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

// MaxEventDuration 活動最長持續時間
const MaxEventDuration = 30 * 24 * time.Hour

// MaxEventCapacity 單一活動名額上限
const MaxEventCapacity = 100_000

// Event 活動模型。RegisteredCount 只能由 ledger 套件修改。
type Event struct {
	ID              int         `json:"id" db:"id"`
	EventID         uuid.UUID   `json:"event_id" db:"event_id"`
	Title           string      `json:"title" db:"title"`
	Description     string      `json:"description" db:"description"`
	StartDate       time.Time   `json:"start_date" db:"start_date"`
	EndDate         time.Time   `json:"end_date" db:"end_date"`
	Location        string      `json:"location" db:"location"`
	Capacity        int         `json:"capacity" db:"capacity"`
	RegisteredCount int         `json:"registered_count" db:"registered_count"`
	Status          EventStatus `json:"status" db:"status"`
	ImageURL        *string     `json:"image_url,omitempty" db:"image_url"`
	Price           float64     `json:"price" db:"price"`
	IsFeatured      bool        `json:"is_featured" db:"is_featured"`
	CreatedByID     int         `json:"created_by_id" db:"created_by_id"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
}

// IsFull 檢查活動名額是否已滿
func (e *Event) IsFull() bool {
	return e.RegisteredCount >= e.Capacity
}

// RemainingSeats 回傳剩餘名額
func (e *Event) RemainingSeats() int {
	return e.Capacity - e.RegisteredCount
}

// HasStarted 檢查活動在指定時間點是否已開始
func (e *Event) HasStarted(now time.Time) bool {
	return !e.StartDate.After(now)
}

// ValidateEventDates 驗證活動起迄時間：開始必須是未來、結束晚於開始、長度不超過 30 天
func ValidateEventDates(start, end, now time.Time) error {
	if !start.After(now) {
		return apperrors.ErrStartDateNotFuture
	}
	if !end.After(start) {
		return apperrors.ErrEndBeforeStart
	}
	if end.Sub(start) > MaxEventDuration {
		return apperrors.ErrDurationTooLong
	}
	return nil
}

// UpdateEventParams 活動部分更新參數。狀態轉換一律走 Publish/Cancel，不開放在這裡修改。
type UpdateEventParams struct {
	Title       *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	Location    *string
	Capacity    *int
	ImageURL    *string
	Price       *float64
	IsFeatured  *bool
}

// IsEmpty 檢查是否沒有任何欄位要更新
func (p UpdateEventParams) IsEmpty() bool {
	return p.Title == nil && p.Description == nil &&
		p.StartDate == nil && p.EndDate == nil &&
		p.Location == nil && p.Capacity == nil &&
		p.ImageURL == nil && p.Price == nil && p.IsFeatured == nil
}

// EventStats 單一活動的報名統計
type EventStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Cancelled int `json:"cancelled"`
	Attended  int `json:"attended"`
}
