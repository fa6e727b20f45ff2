package service

import (
	"context"
	"time"

	"go-event-registration/internal/cache"
	"go-event-registration/internal/ledger"
	"go-event-registration/internal/model"
	"go-event-registration/internal/repository"
	apperrors "go-event-registration/pkg/app_errors"
	"go-event-registration/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// RegistrationService 管理報名生命週期（pending/confirmed → cancelled/attended）。
// 名額只在兩個地方異動：Create 佔用（Reserve）、進入 cancelled 或硬刪除時釋放
// （Release），而且一定和報名列的寫入在同一個交易裡。
type RegistrationService interface {
	Create(ctx context.Context, eventID uuid.UUID, notes *string, actingUser *model.User) (*model.Registration, error)
	Cancel(ctx context.Context, registrationID uuid.UUID, actingUser *model.User) (*model.Registration, error)
	Validate(ctx context.Context, registrationID uuid.UUID) (*model.Registration, error)
	Refuse(ctx context.Context, registrationID uuid.UUID) (*model.Registration, error)
	Update(ctx context.Context, registrationID uuid.UUID, params model.UpdateRegistrationParams) (*model.Registration, error)
	Remove(ctx context.Context, registrationID uuid.UUID) error

	// Query operations：純讀取，沒有副作用
	List(ctx context.Context) ([]*model.RegistrationDetail, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*model.RegistrationDetail, error)
	ListPendingByEvent(ctx context.Context, eventID uuid.UUID) ([]*model.RegistrationDetail, error)
	ListByUser(ctx context.Context, userID int) ([]*model.RegistrationDetail, error)
	GetByRegistrationID(ctx context.Context, registrationID uuid.UUID) (*model.RegistrationDetail, error)
	IsRegistered(ctx context.Context, userID int, eventID uuid.UUID) (bool, error)
	GetEventStats(ctx context.Context, eventID uuid.UUID) (*model.EventStats, error)
}

type RegistrationServiceImpl struct {
	pool           *pgxpool.Pool
	repo           repository.RegistrationRepository
	eventRepo      repository.EventRepository
	capacityLedger ledger.CapacityLedger
	availability   cache.EventAvailabilityCache
	log            *zap.Logger
}

func NewRegistrationService(
	pool *pgxpool.Pool,
	repo repository.RegistrationRepository,
	eventRepo repository.EventRepository,
	capacityLedger ledger.CapacityLedger,
	availability cache.EventAvailabilityCache,
) RegistrationService {
	return &RegistrationServiceImpl{
		pool:           pool,
		repo:           repo,
		eventRepo:      eventRepo,
		capacityLedger: capacityLedger,
		availability:   availability,
		log:            logger.WithComponent("registration_service"),
	}
}

// Create 報名活動。整個流程在單一交易裡：鎖活動列 → 資格檢查 → 寫入報名
// → Reserve。任何一步失敗整筆回滾，不會留下沒佔到名額的報名列。
func (s *RegistrationServiceImpl) Create(ctx context.Context, eventID uuid.UUID, notes *string, actingUser *model.User) (*model.Registration, error) {
	// fast-fail：快取說已滿就直接擋下，省掉一次交易。
	// 快取過期最多造成短暫的誤判「還有名額」，真正的判定在 Reserve。
	if event, err := s.eventRepo.FindByEventID(ctx, eventID); err == nil {
		if seats, ok, cacheErr := s.availability.GetSeats(ctx, event.ID); cacheErr == nil && ok && seats <= 0 {
			return nil, apperrors.ErrEventFull
		}
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	event, err := s.eventRepo.FindByEventIDWithLock(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}

	if event.Status != model.EventStatusPublished {
		return nil, apperrors.ErrEventNotPublished
	}
	if event.IsFull() {
		return nil, apperrors.ErrEventFull
	}
	if event.HasStarted(time.Now().UTC()) {
		return nil, apperrors.ErrEventPast
	}

	exists, err := s.repo.ExistsActive(ctx, tx, actingUser.ID, event.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrAlreadyRegistered
	}

	registration := &model.Registration{
		RegistrationID: uuid.New(),
		UserID:         actingUser.ID,
		EventID:        event.ID,
		Status:         model.RegistrationStatusPending,
		Notes:          notes,
	}

	created, err := s.repo.Create(ctx, tx, registration)
	if err != nil {
		return nil, err
	}

	// 上限在 Reserve 的原子更新裡再驗一次，關閉鎖外讀取的 race window
	if err := s.capacityLedger.Reserve(ctx, tx, event.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.syncSeats(ctx, event.ID, s.availability.DecrSeats)

	return created, nil
}

// Cancel 報名者本人取消自己的報名；管理者可以取消任何人的
func (s *RegistrationServiceImpl) Cancel(ctx context.Context, registrationID uuid.UUID, actingUser *model.User) (*model.Registration, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	registration, err := s.repo.FindByRegistrationIDWithLock(ctx, tx, registrationID)
	if err != nil {
		return nil, err
	}

	if !actingUser.IsAdmin() && !registration.IsOwnedBy(actingUser.ID) {
		return nil, apperrors.ErrNotRegistrationOwner
	}
	if registration.Status == model.RegistrationStatusCancelled {
		return nil, apperrors.ErrRegistrationAlreadyCancelled
	}
	if !registration.Status.CanTransitionTo(model.RegistrationStatusCancelled) {
		return nil, apperrors.ErrInvalidInput
	}

	cancelled, err := s.repo.UpdateStatus(ctx, tx, registration.ID, model.RegistrationStatusCancelled)
	if err != nil {
		return nil, err
	}

	if err := s.capacityLedger.Release(ctx, tx, registration.EventID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.syncSeats(ctx, registration.EventID, s.availability.IncrSeats)

	return cancelled, nil
}

// Validate 管理者核准 pending 報名。名額在 Create 時已佔用，這裡不動帳本。
func (s *RegistrationServiceImpl) Validate(ctx context.Context, registrationID uuid.UUID) (*model.Registration, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	registration, err := s.repo.FindByRegistrationIDWithLock(ctx, tx, registrationID)
	if err != nil {
		return nil, err
	}

	if registration.Status != model.RegistrationStatusPending {
		return nil, apperrors.ErrRegistrationNotPending
	}

	confirmed, err := s.repo.UpdateStatus(ctx, tx, registration.ID, model.RegistrationStatusConfirmed)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return confirmed, nil
}

// Refuse 管理者拒絕 pending 報名：轉 cancelled 並釋放名額
func (s *RegistrationServiceImpl) Refuse(ctx context.Context, registrationID uuid.UUID) (*model.Registration, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	registration, err := s.repo.FindByRegistrationIDWithLock(ctx, tx, registrationID)
	if err != nil {
		return nil, err
	}

	if registration.Status != model.RegistrationStatusPending {
		return nil, apperrors.ErrRegistrationNotPending
	}

	refused, err := s.repo.UpdateStatus(ctx, tx, registration.ID, model.RegistrationStatusCancelled)
	if err != nil {
		return nil, err
	}

	if err := s.capacityLedger.Release(ctx, tx, registration.EventID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.syncSeats(ctx, registration.EventID, s.availability.IncrSeats)

	return refused, nil
}

// Update 只開放修改備註。狀態一律走 Validate/Refuse/Cancel，避免繞過帳本。
func (s *RegistrationServiceImpl) Update(ctx context.Context, registrationID uuid.UUID, params model.UpdateRegistrationParams) (*model.Registration, error) {
	registration, err := s.repo.FindByRegistrationID(ctx, registrationID)
	if err != nil {
		return nil, err
	}

	return s.repo.UpdateNotes(ctx, registration.ID, params)
}

// Remove 管理者硬刪除報名。pending/confirmed 還佔著名額，刪除前先釋放；
// cancelled 不佔名額、attended 由活動結束的結算流程處理，都直接刪。
func (s *RegistrationServiceImpl) Remove(ctx context.Context, registrationID uuid.UUID) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	registration, err := s.repo.FindByRegistrationIDWithLock(ctx, tx, registrationID)
	if err != nil {
		return err
	}

	holdsSeat := registration.Status == model.RegistrationStatusPending ||
		registration.Status == model.RegistrationStatusConfirmed

	if holdsSeat {
		if err := s.capacityLedger.Release(ctx, tx, registration.EventID); err != nil {
			return err
		}
	}

	if err := s.repo.Delete(ctx, tx, registration.ID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	if holdsSeat {
		s.syncSeats(ctx, registration.EventID, s.availability.IncrSeats)
	}

	return nil
}

func (s *RegistrationServiceImpl) List(ctx context.Context) ([]*model.RegistrationDetail, error) {
	return s.repo.List(ctx)
}

func (s *RegistrationServiceImpl) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*model.RegistrationDetail, error) {
	event, err := s.eventRepo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByEventID(ctx, event.ID)
}

func (s *RegistrationServiceImpl) ListPendingByEvent(ctx context.Context, eventID uuid.UUID) ([]*model.RegistrationDetail, error) {
	event, err := s.eventRepo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListPendingByEventID(ctx, event.ID)
}

func (s *RegistrationServiceImpl) ListByUser(ctx context.Context, userID int) ([]*model.RegistrationDetail, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *RegistrationServiceImpl) GetByRegistrationID(ctx context.Context, registrationID uuid.UUID) (*model.RegistrationDetail, error) {
	return s.repo.FindDetail(ctx, registrationID)
}

func (s *RegistrationServiceImpl) IsRegistered(ctx context.Context, userID int, eventID uuid.UUID) (bool, error) {
	event, err := s.eventRepo.FindByEventID(ctx, eventID)
	if err != nil {
		return false, err
	}
	return s.repo.IsRegistered(ctx, userID, event.ID)
}

func (s *RegistrationServiceImpl) GetEventStats(ctx context.Context, eventID uuid.UUID) (*model.EventStats, error) {
	event, err := s.eventRepo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.repo.GetEventStats(ctx, event.ID)
}

// syncSeats 交易提交後對快取做 best-effort 同步，失敗只記 log
func (s *RegistrationServiceImpl) syncSeats(ctx context.Context, eventID int, op func(context.Context, int) error) {
	if err := op(ctx, eventID); err != nil {
		s.log.Warn("failed to sync availability cache",
			zap.Int("event_id", eventID), zap.Error(err))
	}
}
