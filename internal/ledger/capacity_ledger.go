// Package ledger 是 events.registered_count 的唯一寫入口。
// 報名生命週期的狀態轉換只能透過 Reserve/Release 調整名額，
// 其他程式碼不得對 registered_count 做 read-modify-write。
package ledger

import (
	"context"
	"time"

	apperrors "go-event-registration/pkg/app_errors"
	"go-event-registration/pkg/logger"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type CapacityLedger interface {
	// Reserve 原子性地佔用一個名額。名額已滿時回傳 ErrEventFull。
	Reserve(ctx context.Context, tx pgx.Tx, eventID int) error
	// Release 原子性地釋放一個名額，不會低於 0。
	Release(ctx context.Context, tx pgx.Tx, eventID int) error
}

type CapacityLedgerImpl struct {
	log *zap.Logger
}

func NewCapacityLedger() CapacityLedger {
	return &CapacityLedgerImpl{
		log: logger.WithComponent("ledger"),
	}
}

// Reserve 的上限檢查放在 UPDATE 的 WHERE 裡：即使呼叫端先讀到「還有名額」，
// 兩個併發交易也只有一個能通過 registered_count < capacity 的條件，
// 不可能超賣。RowsAffected 為 0 代表已滿（活動存在與否由呼叫端先確認）。
func (l *CapacityLedgerImpl) Reserve(ctx context.Context, tx pgx.Tx, eventID int) error {
	query := `
		UPDATE events
		SET registered_count = registered_count + 1, updated_at = $1
		WHERE id = $2 AND registered_count < capacity
	`

	result, err := tx.Exec(ctx, query, time.Now().UTC(), eventID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrEventFull
	}

	return nil
}

// Release 以 registered_count > 0 為條件遞減。狀態機把關正確時不會遇到 0，
// 真的遇到代表帳本失衡：記 error log 後繼續，不把內部不變量問題丟給使用者。
func (l *CapacityLedgerImpl) Release(ctx context.Context, tx pgx.Tx, eventID int) error {
	query := `
		UPDATE events
		SET registered_count = registered_count - 1, updated_at = $1
		WHERE id = $2 AND registered_count > 0
	`

	result, err := tx.Exec(ctx, query, time.Now().UTC(), eventID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		l.log.Error("release below zero clamped",
			zap.Int("event_id", eventID))
	}

	return nil
}
