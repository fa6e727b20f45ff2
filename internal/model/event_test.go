package model_test

import (
	"testing"
	"time"

	"go-event-registration/internal/model"
	apperrors "go-event-registration/pkg/app_errors"

	"github.com/stretchr/testify/assert"
)

func TestEventStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    model.EventStatus
		to      model.EventStatus
		allowed bool
	}{
		{"draft to published", model.EventStatusDraft, model.EventStatusPublished, true},
		{"draft to cancelled", model.EventStatusDraft, model.EventStatusCancelled, true},
		{"draft to completed", model.EventStatusDraft, model.EventStatusCompleted, false},
		{"published to cancelled", model.EventStatusPublished, model.EventStatusCancelled, true},
		{"published to completed", model.EventStatusPublished, model.EventStatusCompleted, true},
		{"published to draft", model.EventStatusPublished, model.EventStatusDraft, false},
		{"cancelled is terminal", model.EventStatusCancelled, model.EventStatusPublished, false},
		{"completed is terminal", model.EventStatusCompleted, model.EventStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestEventStatusIsValid(t *testing.T) {
	assert.True(t, model.EventStatusDraft.IsValid())
	assert.True(t, model.EventStatusCompleted.IsValid())
	assert.False(t, model.EventStatus("archived").IsValid())
}

func TestValidateEventDates(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		start := now.Add(24 * time.Hour)
		end := start.Add(2 * time.Hour)
		assert.NoError(t, model.ValidateEventDates(start, end, now))
	})

	t.Run("Failed - start in the past", func(t *testing.T) {
		start := now.Add(-24 * time.Hour)
		end := start.Add(2 * time.Hour)
		err := model.ValidateEventDates(start, end, now)
		assert.ErrorIs(t, err, apperrors.ErrStartDateNotFuture)
	})

	t.Run("Failed - start equals now", func(t *testing.T) {
		err := model.ValidateEventDates(now, now.Add(time.Hour), now)
		assert.ErrorIs(t, err, apperrors.ErrStartDateNotFuture)
	})

	t.Run("Failed - end before start", func(t *testing.T) {
		start := now.Add(24 * time.Hour)
		err := model.ValidateEventDates(start, start.Add(-time.Hour), now)
		assert.ErrorIs(t, err, apperrors.ErrEndBeforeStart)
	})

	t.Run("Failed - end equals start", func(t *testing.T) {
		start := now.Add(24 * time.Hour)
		err := model.ValidateEventDates(start, start, now)
		assert.ErrorIs(t, err, apperrors.ErrEndBeforeStart)
	})

	t.Run("Failed - duration over 30 days", func(t *testing.T) {
		start := now.Add(24 * time.Hour)
		end := start.Add(model.MaxEventDuration + time.Minute)
		err := model.ValidateEventDates(start, end, now)
		assert.ErrorIs(t, err, apperrors.ErrDurationTooLong)
	})

	t.Run("Success - exactly 30 days", func(t *testing.T) {
		start := now.Add(24 * time.Hour)
		end := start.Add(model.MaxEventDuration)
		assert.NoError(t, model.ValidateEventDates(start, end, now))
	})
}

func TestEventCapacityHelpers(t *testing.T) {
	event := &model.Event{Capacity: 10, RegisteredCount: 10}
	assert.True(t, event.IsFull())
	assert.Equal(t, 0, event.RemainingSeats())

	event.RegisteredCount = 7
	assert.False(t, event.IsFull())
	assert.Equal(t, 3, event.RemainingSeats())
}

func TestEventHasStarted(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	future := &model.Event{StartDate: now.Add(time.Hour)}
	assert.False(t, future.HasStarted(now))

	past := &model.Event{StartDate: now.Add(-time.Hour)}
	assert.True(t, past.HasStarted(now))

	exact := &model.Event{StartDate: now}
	assert.True(t, exact.HasStarted(now))
}

func TestUpdateEventParamsIsEmpty(t *testing.T) {
	assert.True(t, model.UpdateEventParams{}.IsEmpty())

	title := "new title"
	assert.False(t, model.UpdateEventParams{Title: &title}.IsEmpty())
}
