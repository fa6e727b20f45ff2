package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-event-registration/internal/model"
	apperrors "go-event-registration/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const eventColumns = `id, event_id, title, description, start_date, end_date, location,
		capacity, registered_count, status, image_url, price, is_featured,
		created_by_id, created_at, updated_at`

type EventRepository interface {
	Create(ctx context.Context, event *model.Event) (*model.Event, error)
	List(ctx context.Context, status *model.EventStatus, publicOnly bool) ([]*model.Event, error)
	ListUpcoming(ctx context.Context, limit int) ([]*model.Event, error)
	ListFeatured(ctx context.Context, limit int) ([]*model.Event, error)
	FindByID(ctx context.Context, id int) (*model.Event, error)
	FindByEventID(ctx context.Context, eventID uuid.UUID) (*model.Event, error)
	Update(ctx context.Context, id int, params model.UpdateEventParams) (*model.Event, error)
	MarkCompleted(ctx context.Context, before time.Time) (int, error)

	// Transaction methods
	FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Event, error)
	FindByEventIDWithLock(ctx context.Context, tx pgx.Tx, eventID uuid.UUID) (*model.Event, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id int, status model.EventStatus) (*model.Event, error)
	UpdateWithTx(ctx context.Context, tx pgx.Tx, id int, params model.UpdateEventParams) (*model.Event, error)
	Delete(ctx context.Context, tx pgx.Tx, id int) error
}

type EventRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &EventRepositoryImpl{
		pool: pool,
	}
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var event model.Event
	err := row.Scan(
		&event.ID,
		&event.EventID,
		&event.Title,
		&event.Description,
		&event.StartDate,
		&event.EndDate,
		&event.Location,
		&event.Capacity,
		&event.RegisteredCount,
		&event.Status,
		&event.ImageURL,
		&event.Price,
		&event.IsFeatured,
		&event.CreatedByID,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *EventRepositoryImpl) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	query := fmt.Sprintf(`
		INSERT INTO events (
			event_id, title, description, start_date, end_date, location,
			capacity, status, image_url, price, is_featured, created_by_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING %s
	`, eventColumns)

	return scanEvent(r.pool.QueryRow(ctx, query,
		event.EventID, event.Title, event.Description,
		event.StartDate, event.EndDate, event.Location,
		event.Capacity, event.Status, event.ImageURL,
		event.Price, event.IsFeatured, event.CreatedByID,
	))
}

func (r *EventRepositoryImpl) List(ctx context.Context, status *model.EventStatus, publicOnly bool) ([]*model.Event, error) {
	conds := []string{}
	args := []interface{}{}
	argPos := 1

	if status != nil {
		conds = append(conds, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *status)
		argPos++
	}
	if publicOnly {
		conds = append(conds, fmt.Sprintf("status = $%d", argPos))
		args = append(args, model.EventStatusPublished)
		argPos++
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		%s
		ORDER BY start_date ASC
	`, eventColumns, where)

	return r.queryEvents(ctx, query, args...)
}

func (r *EventRepositoryImpl) ListUpcoming(ctx context.Context, limit int) ([]*model.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		WHERE status = $1 AND start_date > $2
		ORDER BY start_date ASC
		LIMIT $3
	`, eventColumns)

	return r.queryEvents(ctx, query, model.EventStatusPublished, time.Now().UTC(), limit)
}

func (r *EventRepositoryImpl) ListFeatured(ctx context.Context, limit int) ([]*model.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		WHERE status = $1 AND is_featured = TRUE
		ORDER BY start_date ASC
		LIMIT $2
	`, eventColumns)

	return r.queryEvents(ctx, query, model.EventStatusPublished, limit)
}

func (r *EventRepositoryImpl) queryEvents(ctx context.Context, query string, args ...interface{}) ([]*model.Event, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*model.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

func (r *EventRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		WHERE id = $1
	`, eventColumns)

	return scanEvent(r.pool.QueryRow(ctx, query, id))
}

func (r *EventRepositoryImpl) FindByEventID(ctx context.Context, eventID uuid.UUID) (*model.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		WHERE event_id = $1
	`, eventColumns)

	return scanEvent(r.pool.QueryRow(ctx, query, eventID))
}

// FindByIDWithLock 在交易中鎖住活動列，後續的名額檢查與寫入都以鎖住的值為準
func (r *EventRepositoryImpl) FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		WHERE id = $1
		FOR UPDATE
	`, eventColumns)

	return scanEvent(tx.QueryRow(ctx, query, id))
}

func (r *EventRepositoryImpl) FindByEventIDWithLock(ctx context.Context, tx pgx.Tx, eventID uuid.UUID) (*model.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		WHERE event_id = $1
		FOR UPDATE
	`, eventColumns)

	return scanEvent(tx.QueryRow(ctx, query, eventID))
}

func (r *EventRepositoryImpl) UpdateStatus(ctx context.Context, tx pgx.Tx, id int, status model.EventStatus) (*model.Event, error) {
	query := fmt.Sprintf(`
		UPDATE events
		SET status = $1, updated_at = $2
		WHERE id = $3
		RETURNING %s
	`, eventColumns)

	return scanEvent(tx.QueryRow(ctx, query, status, time.Now().UTC(), id))
}

func (r *EventRepositoryImpl) Update(ctx context.Context, id int, params model.UpdateEventParams) (*model.Event, error) {
	query, args, err := buildEventUpdate(id, params)
	if err != nil {
		return nil, err
	}
	return scanEvent(r.pool.QueryRow(ctx, query, args...))
}

// UpdateWithTx 與 Update 相同，但在呼叫端的交易中執行（容量變更需要先鎖列驗證）
func (r *EventRepositoryImpl) UpdateWithTx(ctx context.Context, tx pgx.Tx, id int, params model.UpdateEventParams) (*model.Event, error) {
	query, args, err := buildEventUpdate(id, params)
	if err != nil {
		return nil, err
	}
	return scanEvent(tx.QueryRow(ctx, query, args...))
}

func buildEventUpdate(id int, params model.UpdateEventParams) (string, []interface{}, error) {
	sets := []string{}
	args := []interface{}{}
	argPos := 1

	addSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}

	if params.Title != nil {
		addSet("title", *params.Title)
	}
	if params.Description != nil {
		addSet("description", *params.Description)
	}
	if params.StartDate != nil {
		addSet("start_date", *params.StartDate)
	}
	if params.EndDate != nil {
		addSet("end_date", *params.EndDate)
	}
	if params.Location != nil {
		addSet("location", *params.Location)
	}
	if params.Capacity != nil {
		addSet("capacity", *params.Capacity)
	}
	if params.ImageURL != nil {
		addSet("image_url", *params.ImageURL)
	}
	if params.Price != nil {
		addSet("price", *params.Price)
	}
	if params.IsFeatured != nil {
		addSet("is_featured", *params.IsFeatured)
	}

	if len(sets) == 0 {
		return "", nil, apperrors.ErrInvalidInput
	}

	// add updated_at
	addSet("updated_at", time.Now().UTC())

	// add id
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE events
		SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(sets, ", "), argPos, eventColumns)

	return query, args, nil
}

// Delete 僅在沒有任何佔用名額的報名時允許刪除
func (r *EventRepositoryImpl) Delete(ctx context.Context, tx pgx.Tx, id int) error {
	query := `
		DELETE FROM events
		WHERE id = $1 AND registered_count = 0
	`

	result, err := tx.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrEventHasRegistrations
	}

	return nil
}

// MarkCompleted 將已過結束時間的 published 活動批次標記為 completed，回傳更新筆數
func (r *EventRepositoryImpl) MarkCompleted(ctx context.Context, before time.Time) (int, error) {
	query := `
		UPDATE events
		SET status = $1, updated_at = $2
		WHERE status = $3 AND end_date < $4
	`

	result, err := r.pool.Exec(ctx, query,
		model.EventStatusCompleted, time.Now().UTC(), model.EventStatusPublished, before)
	if err != nil {
		return 0, err
	}

	return int(result.RowsAffected()), nil
}
