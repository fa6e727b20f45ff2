package service

import (
	"context"
	"time"

	"go-event-registration/internal/cache"
	"go-event-registration/internal/model"
	"go-event-registration/internal/repository"
	apperrors "go-event-registration/pkg/app_errors"
	"go-event-registration/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const defaultUpcomingLimit = 10
const featuredLimit = 5

// EventService 管理活動的生命週期（draft → published → cancelled/completed）
// 與讀取路徑。報名與名額異動屬於 RegistrationService / ledger 的職責。
type EventService interface {
	Create(ctx context.Context, event *model.Event, actingUser *model.User) (*model.Event, error)
	List(ctx context.Context, status *model.EventStatus, includePrivate bool) ([]*model.Event, error)
	ListUpcoming(ctx context.Context, limit int) ([]*model.Event, error)
	ListFeatured(ctx context.Context) ([]*model.Event, error)
	GetByEventID(ctx context.Context, eventID uuid.UUID, includePrivate bool) (*model.Event, error)
	Update(ctx context.Context, eventID uuid.UUID, params model.UpdateEventParams) (*model.Event, error)
	Publish(ctx context.Context, eventID uuid.UUID) (*model.Event, error)
	Cancel(ctx context.Context, eventID uuid.UUID) (*model.Event, error)
	Delete(ctx context.Context, eventID uuid.UUID) error
}

type EventServiceImpl struct {
	pool         *pgxpool.Pool
	repo         repository.EventRepository
	availability cache.EventAvailabilityCache
	log          *zap.Logger
}

func NewEventService(
	pool *pgxpool.Pool,
	repo repository.EventRepository,
	availability cache.EventAvailabilityCache,
) EventService {
	return &EventServiceImpl{
		pool:         pool,
		repo:         repo,
		availability: availability,
		log:          logger.WithComponent("event_service"),
	}
}

func (s *EventServiceImpl) Create(ctx context.Context, event *model.Event, actingUser *model.User) (*model.Event, error) {
	if err := model.ValidateEventDates(event.StartDate, event.EndDate, time.Now().UTC()); err != nil {
		return nil, err
	}
	if event.Capacity < 1 || event.Capacity > model.MaxEventCapacity {
		return nil, apperrors.ErrInvalidInput
	}
	if event.Price < 0 {
		return nil, apperrors.ErrInvalidInput
	}

	if event.Status == "" {
		event.Status = model.EventStatusDraft
	}
	// 建立時只接受 draft 或 published
	if event.Status != model.EventStatusDraft && event.Status != model.EventStatusPublished {
		return nil, apperrors.ErrInvalidInput
	}

	event.EventID = uuid.New()
	event.CreatedByID = actingUser.ID

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return nil, err
	}

	if created.Status == model.EventStatusPublished {
		s.warmAvailability(ctx, created)
	}

	return created, nil
}

func (s *EventServiceImpl) List(ctx context.Context, status *model.EventStatus, includePrivate bool) ([]*model.Event, error) {
	return s.repo.List(ctx, status, !includePrivate)
}

func (s *EventServiceImpl) ListUpcoming(ctx context.Context, limit int) ([]*model.Event, error) {
	if limit <= 0 {
		limit = defaultUpcomingLimit
	}
	return s.repo.ListUpcoming(ctx, limit)
}

func (s *EventServiceImpl) ListFeatured(ctx context.Context) ([]*model.Event, error) {
	return s.repo.ListFeatured(ctx, featuredLimit)
}

// GetByEventID 未發布的活動對一般使用者視同不存在
func (s *EventServiceImpl) GetByEventID(ctx context.Context, eventID uuid.UUID, includePrivate bool) (*model.Event, error) {
	event, err := s.repo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if !includePrivate && event.Status != model.EventStatusPublished {
		return nil, apperrors.ErrEventNotFound
	}

	return event, nil
}

// Update 在交易中鎖住活動列後驗證：容量不得低於已報名數、
// 日期異動時以合併後的起迄重新驗證。
func (s *EventServiceImpl) Update(ctx context.Context, eventID uuid.UUID, params model.UpdateEventParams) (*model.Event, error) {
	if params.IsEmpty() {
		return nil, apperrors.ErrInvalidInput
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	event, err := s.repo.FindByEventIDWithLock(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}

	if params.StartDate != nil || params.EndDate != nil {
		start := event.StartDate
		end := event.EndDate
		if params.StartDate != nil {
			start = *params.StartDate
		}
		if params.EndDate != nil {
			end = *params.EndDate
		}
		if err := model.ValidateEventDates(start, end, time.Now().UTC()); err != nil {
			return nil, err
		}
	}

	if params.Capacity != nil {
		if *params.Capacity < 1 || *params.Capacity > model.MaxEventCapacity {
			return nil, apperrors.ErrInvalidInput
		}
		if *params.Capacity < event.RegisteredCount {
			return nil, apperrors.ErrCapacityTooLow
		}
	}
	if params.Price != nil && *params.Price < 0 {
		return nil, apperrors.ErrInvalidInput
	}

	updated, err := s.repo.UpdateWithTx(ctx, tx, event.ID, params)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	// 容量改變會讓快取的剩餘名額過期，發布中的活動重新預熱
	if params.Capacity != nil && updated.Status == model.EventStatusPublished {
		s.warmAvailability(ctx, updated)
	}

	return updated, nil
}

// Publish 只允許 draft 發布，且發布當下 start date 必須仍在未來
// （提早很久建立的草稿可能已經過期）
func (s *EventServiceImpl) Publish(ctx context.Context, eventID uuid.UUID) (*model.Event, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	event, err := s.repo.FindByEventIDWithLock(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}

	if event.Status != model.EventStatusDraft {
		return nil, apperrors.ErrEventNotDraft
	}
	if event.HasStarted(time.Now().UTC()) {
		return nil, apperrors.ErrEventStarted
	}

	published, err := s.repo.UpdateStatus(ctx, tx, event.ID, model.EventStatusPublished)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.warmAvailability(ctx, published)

	return published, nil
}

// Cancel 對已取消或已結束的活動回報衝突，不做靜默覆寫。
// 既有報名的狀態不動；取消後的活動不再接受 Reserve。
func (s *EventServiceImpl) Cancel(ctx context.Context, eventID uuid.UUID) (*model.Event, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	event, err := s.repo.FindByEventIDWithLock(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}

	switch event.Status {
	case model.EventStatusCancelled:
		return nil, apperrors.ErrEventAlreadyCancelled
	case model.EventStatusCompleted:
		return nil, apperrors.ErrEventCompleted
	}

	cancelled, err := s.repo.UpdateStatus(ctx, tx, event.ID, model.EventStatusCancelled)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.invalidateAvailability(ctx, cancelled.ID)

	return cancelled, nil
}

// Delete 只有 registered_count 為 0 的活動可以刪除，否則請改用 Cancel
func (s *EventServiceImpl) Delete(ctx context.Context, eventID uuid.UUID) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	event, err := s.repo.FindByEventIDWithLock(ctx, tx, eventID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, tx, event.ID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.invalidateAvailability(ctx, event.ID)

	return nil
}

// 快取是 best-effort：失敗只記 log，不影響主流程
func (s *EventServiceImpl) warmAvailability(ctx context.Context, event *model.Event) {
	if err := s.availability.WarmSeats(ctx, event.ID, event.RemainingSeats()); err != nil {
		s.log.Warn("failed to warm availability cache",
			zap.Int("event_id", event.ID), zap.Error(err))
	}
}

func (s *EventServiceImpl) invalidateAvailability(ctx context.Context, eventID int) {
	if err := s.availability.Invalidate(ctx, eventID); err != nil {
		s.log.Warn("failed to invalidate availability cache",
			zap.Int("event_id", eventID), zap.Error(err))
	}
}
