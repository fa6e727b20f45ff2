package apperrors

import "errors"

var (
	// not found
	ErrEventNotFound        = errors.New("event not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrUserNotFound         = errors.New("user not found")

	// 日期驗證
	ErrStartDateNotFuture = errors.New("start date must be in the future")
	ErrEndBeforeStart     = errors.New("end date must be after start date")
	ErrDurationTooLong    = errors.New("event duration cannot exceed 30 days")

	// 活動狀態衝突
	ErrEventNotDraft         = errors.New("only draft events can be published")
	ErrEventStarted          = errors.New("cannot publish an event that has already started")
	ErrEventAlreadyCancelled = errors.New("event is already cancelled")
	ErrEventCompleted        = errors.New("cannot cancel a completed event")
	ErrEventHasRegistrations = errors.New("cannot delete event with existing registrations")
	ErrCapacityTooLow        = errors.New("capacity cannot be less than registered count")

	// 報名衝突
	ErrEventNotPublished            = errors.New("cannot register for an unpublished event")
	ErrEventFull                    = errors.New("event is at full capacity")
	ErrEventPast                    = errors.New("cannot register for a past event")
	ErrAlreadyRegistered            = errors.New("already registered for this event")
	ErrRegistrationAlreadyCancelled = errors.New("registration is already cancelled")
	ErrRegistrationNotPending       = errors.New("registration is not pending")
	ErrNotRegistrationOwner         = errors.New("can only cancel your own registrations")

	ErrInvalidInput        = errors.New("invalid input")
	ErrInternalServerError = errors.New("internal server error")
)
