package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-event-registration/internal/model"
	apperrors "go-event-registration/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const registrationColumns = `id, registration_id, user_id, event_id, status, notes, registered_at, updated_at`

// registrationDetailColumns 讀取側 join：報名列表需要帶出使用者與活動摘要
const registrationDetailColumns = `r.id, r.registration_id, r.user_id, r.event_id, r.status, r.notes,
		r.registered_at, r.updated_at,
		u.name AS user_name, u.email AS user_email,
		e.event_id AS event_uuid, e.title AS event_title, e.start_date AS event_start`

type RegistrationRepository interface {
	List(ctx context.Context) ([]*model.RegistrationDetail, error)
	ListByEventID(ctx context.Context, eventID int) ([]*model.RegistrationDetail, error)
	ListByUserID(ctx context.Context, userID int) ([]*model.RegistrationDetail, error)
	ListPendingByEventID(ctx context.Context, eventID int) ([]*model.RegistrationDetail, error)
	FindByID(ctx context.Context, id int) (*model.Registration, error)
	FindByRegistrationID(ctx context.Context, registrationID uuid.UUID) (*model.Registration, error)
	FindDetail(ctx context.Context, registrationID uuid.UUID) (*model.RegistrationDetail, error)
	IsRegistered(ctx context.Context, userID, eventID int) (bool, error)
	UpdateNotes(ctx context.Context, id int, params model.UpdateRegistrationParams) (*model.Registration, error)
	GetEventStats(ctx context.Context, eventID int) (*model.EventStats, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, registration *model.Registration) (*model.Registration, error)
	FindByRegistrationIDWithLock(ctx context.Context, tx pgx.Tx, registrationID uuid.UUID) (*model.Registration, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id int, status model.RegistrationStatus) (*model.Registration, error)
	ExistsActive(ctx context.Context, tx pgx.Tx, userID, eventID int) (bool, error)
	Delete(ctx context.Context, tx pgx.Tx, id int) error
}

type RegistrationRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewRegistrationRepository(pool *pgxpool.Pool) RegistrationRepository {
	return &RegistrationRepositoryImpl{
		pool: pool,
	}
}

func scanRegistration(row pgx.Row) (*model.Registration, error) {
	var reg model.Registration
	err := row.Scan(
		&reg.ID,
		&reg.RegistrationID,
		&reg.UserID,
		&reg.EventID,
		&reg.Status,
		&reg.Notes,
		&reg.RegisteredAt,
		&reg.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrRegistrationNotFound
		}
		return nil, err
	}
	return &reg, nil
}

func scanRegistrationDetail(row pgx.Row) (*model.RegistrationDetail, error) {
	var detail model.RegistrationDetail
	err := row.Scan(
		&detail.ID,
		&detail.RegistrationID,
		&detail.UserID,
		&detail.EventID,
		&detail.Status,
		&detail.Notes,
		&detail.RegisteredAt,
		&detail.UpdatedAt,
		&detail.UserName,
		&detail.UserEmail,
		&detail.EventUUID,
		&detail.EventTitle,
		&detail.EventStart,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrRegistrationNotFound
		}
		return nil, err
	}
	return &detail, nil
}

// Create 在交易中寫入報名。partial unique index 是重複報名檢查的最後防線：
// 兩個併發請求同時通過 ExistsActive 預檢時，第二個 insert 會在這裡被擋下。
func (r *RegistrationRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, registration *model.Registration) (*model.Registration, error) {
	query := fmt.Sprintf(`
		INSERT INTO registrations (registration_id, user_id, event_id, status, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s
	`, registrationColumns)

	created, err := scanRegistration(tx.QueryRow(ctx, query,
		registration.RegistrationID, registration.UserID, registration.EventID,
		registration.Status, registration.Notes,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("failed to create registration: %w", err)
	}

	return created, nil
}

func (r *RegistrationRepositoryImpl) List(ctx context.Context) ([]*model.RegistrationDetail, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		JOIN events e ON e.id = r.event_id
		ORDER BY r.registered_at DESC
	`, registrationDetailColumns)

	return r.queryDetails(ctx, query)
}

func (r *RegistrationRepositoryImpl) ListByEventID(ctx context.Context, eventID int) ([]*model.RegistrationDetail, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		JOIN events e ON e.id = r.event_id
		WHERE r.event_id = $1
		ORDER BY r.registered_at DESC
	`, registrationDetailColumns)

	return r.queryDetails(ctx, query, eventID)
}

func (r *RegistrationRepositoryImpl) ListByUserID(ctx context.Context, userID int) ([]*model.RegistrationDetail, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		JOIN events e ON e.id = r.event_id
		WHERE r.user_id = $1
		ORDER BY r.registered_at DESC
	`, registrationDetailColumns)

	return r.queryDetails(ctx, query, userID)
}

func (r *RegistrationRepositoryImpl) ListPendingByEventID(ctx context.Context, eventID int) ([]*model.RegistrationDetail, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		JOIN events e ON e.id = r.event_id
		WHERE r.event_id = $1 AND r.status = $2
		ORDER BY r.registered_at ASC
	`, registrationDetailColumns)

	return r.queryDetails(ctx, query, eventID, model.RegistrationStatusPending)
}

func (r *RegistrationRepositoryImpl) queryDetails(ctx context.Context, query string, args ...interface{}) ([]*model.RegistrationDetail, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]*model.RegistrationDetail, 0)
	for rows.Next() {
		detail, err := scanRegistrationDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return details, nil
}

func (r *RegistrationRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Registration, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM registrations
		WHERE id = $1
	`, registrationColumns)

	return scanRegistration(r.pool.QueryRow(ctx, query, id))
}

func (r *RegistrationRepositoryImpl) FindByRegistrationID(ctx context.Context, registrationID uuid.UUID) (*model.Registration, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM registrations
		WHERE registration_id = $1
	`, registrationColumns)

	return scanRegistration(r.pool.QueryRow(ctx, query, registrationID))
}

func (r *RegistrationRepositoryImpl) FindDetail(ctx context.Context, registrationID uuid.UUID) (*model.RegistrationDetail, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		JOIN events e ON e.id = r.event_id
		WHERE r.registration_id = $1
	`, registrationDetailColumns)

	return scanRegistrationDetail(r.pool.QueryRow(ctx, query, registrationID))
}

// FindByRegistrationIDWithLock 在交易中鎖住報名列，狀態轉換前先鎖再檢查
func (r *RegistrationRepositoryImpl) FindByRegistrationIDWithLock(ctx context.Context, tx pgx.Tx, registrationID uuid.UUID) (*model.Registration, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM registrations
		WHERE registration_id = $1
		FOR UPDATE
	`, registrationColumns)

	return scanRegistration(tx.QueryRow(ctx, query, registrationID))
}

func (r *RegistrationRepositoryImpl) UpdateStatus(ctx context.Context, tx pgx.Tx, id int, status model.RegistrationStatus) (*model.Registration, error) {
	query := fmt.Sprintf(`
		UPDATE registrations
		SET status = $1, updated_at = $2
		WHERE id = $3
		RETURNING %s
	`, registrationColumns)

	reg, err := scanRegistration(tx.QueryRow(ctx, query, status, time.Now().UTC(), id))
	if err != nil {
		if errors.Is(err, apperrors.ErrRegistrationNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update registration status: %w", err)
	}

	return reg, nil
}

func (r *RegistrationRepositoryImpl) UpdateNotes(ctx context.Context, id int, params model.UpdateRegistrationParams) (*model.Registration, error) {
	if params.Notes == nil {
		return nil, apperrors.ErrInvalidInput
	}

	query := fmt.Sprintf(`
		UPDATE registrations
		SET notes = $1, updated_at = $2
		WHERE id = $3
		RETURNING %s
	`, registrationColumns)

	return scanRegistration(r.pool.QueryRow(ctx, query, *params.Notes, time.Now().UTC(), id))
}

// ExistsActive 檢查使用者對活動是否已有未取消的報名
func (r *RegistrationRepositoryImpl) ExistsActive(ctx context.Context, tx pgx.Tx, userID, eventID int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM registrations
			WHERE user_id = $1 AND event_id = $2 AND status <> $3
		)
	`

	var exists bool
	err := tx.QueryRow(ctx, query, userID, eventID, model.RegistrationStatusCancelled).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

// IsRegistered 使用者是否有 pending 或 confirmed 的報名
func (r *RegistrationRepositoryImpl) IsRegistered(ctx context.Context, userID, eventID int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM registrations
			WHERE user_id = $1 AND event_id = $2 AND status IN ($3, $4)
		)
	`

	var exists bool
	err := r.pool.QueryRow(ctx, query, userID, eventID,
		model.RegistrationStatusPending, model.RegistrationStatusConfirmed).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *RegistrationRepositoryImpl) Delete(ctx context.Context, tx pgx.Tx, id int) error {
	query := `
		DELETE FROM registrations
		WHERE id = $1
	`

	result, err := tx.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrRegistrationNotFound
	}

	return nil
}

// GetEventStats 以單一 aggregate 查詢計算各狀態的報名數
func (r *RegistrationRepositoryImpl) GetEventStats(ctx context.Context, eventID int) (*model.EventStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'confirmed'),
			COUNT(*) FILTER (WHERE status = 'cancelled'),
			COUNT(*) FILTER (WHERE status = 'attended')
		FROM registrations
		WHERE event_id = $1
	`

	var stats model.EventStats
	err := r.pool.QueryRow(ctx, query, eventID).Scan(
		&stats.Total,
		&stats.Pending,
		&stats.Confirmed,
		&stats.Cancelled,
		&stats.Attended,
	)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
