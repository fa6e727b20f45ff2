package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// EventAvailabilityCache 快取已發布活動的剩餘名額，給公開讀取路徑與報名前的
// fast-fail 檢查用。Postgres 才是名額的唯一真相：快取只會讓滿額的活動早一點
// 被擋下，絕不參與實際的名額判定。
type EventAvailabilityCache interface {
	// 預熱：活動發布時寫入剩餘名額
	WarmSeats(ctx context.Context, eventID int, seats int) error
	// 讀取剩餘名額。ok 為 false 代表快取沒有這個活動（未發布或已失效）
	GetSeats(ctx context.Context, eventID int) (seats int, ok bool, err error)
	// 名額異動後的 best-effort 同步，key 不存在時不做事
	DecrSeats(ctx context.Context, eventID int) error
	IncrSeats(ctx context.Context, eventID int) error
	// 失效：活動取消、刪除或容量改變時移除
	Invalidate(ctx context.Context, eventID int) error
}

type EventAvailabilityCacheImpl struct {
	client *redis.Client
}

func NewEventAvailabilityCache(client *redis.Client) EventAvailabilityCache {
	return &EventAvailabilityCacheImpl{
		client: client,
	}
}

func (c *EventAvailabilityCacheImpl) seatsKey(eventID int) string {
	return fmt.Sprintf("event:%d:seats", eventID)
}

func (c *EventAvailabilityCacheImpl) WarmSeats(ctx context.Context, eventID int, seats int) error {
	return c.client.Set(ctx, c.seatsKey(eventID), seats, 0).Err()
}

func (c *EventAvailabilityCacheImpl) GetSeats(ctx context.Context, eventID int) (int, bool, error) {
	val, err := c.client.Get(ctx, c.seatsKey(eventID)).Int()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return val, true, nil
}

// 只在 key 存在時遞減，且不低於 0（使用Lua腳本確保原子性）
const decrSeatsScript = `
	local key = KEYS[1]
	local current = redis.call('GET', key)
	if not current then
		return -1
	end
	if tonumber(current) <= 0 then
		return 0
	end
	return redis.call('DECRBY', key, 1)
`

func (c *EventAvailabilityCacheImpl) DecrSeats(ctx context.Context, eventID int) error {
	return c.client.Eval(ctx, decrSeatsScript, []string{c.seatsKey(eventID)}).Err()
}

// 只在 key 存在時遞增，避免替未預熱的活動創造出幽靈名額
const incrSeatsScript = `
	local key = KEYS[1]
	if redis.call('EXISTS', key) == 0 then
		return -1
	end
	return redis.call('INCRBY', key, 1)
`

func (c *EventAvailabilityCacheImpl) IncrSeats(ctx context.Context, eventID int) error {
	return c.client.Eval(ctx, incrSeatsScript, []string{c.seatsKey(eventID)}).Err()
}

func (c *EventAvailabilityCacheImpl) Invalidate(ctx context.Context, eventID int) error {
	return c.client.Del(ctx, c.seatsKey(eventID)).Err()
}
