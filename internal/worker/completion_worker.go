package worker

import (
	"context"
	"time"

	"go-event-registration/internal/repository"
	"go-event-registration/pkg/logger"

	"go.uber.org/zap"
)

const defaultSweepInterval = time.Minute

// CompletionWorker 定期把已過結束時間的 published 活動標記為 completed。
// 狀態機裡 completed 不是由使用者操作觸發的，交給這個背景掃描。
type CompletionWorker interface {
	Start(ctx context.Context)
}

type CompletionWorkerImpl struct {
	eventRepo repository.EventRepository
	interval  time.Duration
	log       *zap.Logger
}

func NewCompletionWorker(eventRepo repository.EventRepository, interval time.Duration) CompletionWorker {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &CompletionWorkerImpl{
		eventRepo: eventRepo,
		interval:  interval,
		log:       logger.WithComponent("completion_worker"),
	}
}

func (w *CompletionWorkerImpl) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.sweep(ctx)
			}
		}
	}()
}

func (w *CompletionWorkerImpl) sweep(ctx context.Context) {
	count, err := w.eventRepo.MarkCompleted(ctx, time.Now().UTC())
	if err != nil {
		// 資料庫暫時連不上就等下一輪，不中斷 worker
		w.log.Error("failed to mark completed events", zap.Error(err))
		return
	}
	if count > 0 {
		w.log.Info("marked events completed", zap.Int("count", count))
	}
}
