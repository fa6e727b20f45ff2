package handler_test

import (
	"context"

	"go-event-registration/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type EventServiceMock struct {
	mock.Mock
}

func NewEventServiceMock() *EventServiceMock {
	return &EventServiceMock{}
}

func (m *EventServiceMock) Create(ctx context.Context, event *model.Event, actingUser *model.User) (*model.Event, error) {
	args := m.Called(ctx, event, actingUser)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *EventServiceMock) List(ctx context.Context, status *model.EventStatus, includePrivate bool) ([]*model.Event, error) {
	args := m.Called(ctx, status, includePrivate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Event), args.Error(1)
}

func (m *EventServiceMock) ListUpcoming(ctx context.Context, limit int) ([]*model.Event, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Event), args.Error(1)
}

func (m *EventServiceMock) ListFeatured(ctx context.Context) ([]*model.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Event), args.Error(1)
}

func (m *EventServiceMock) GetByEventID(ctx context.Context, eventID uuid.UUID, includePrivate bool) (*model.Event, error) {
	args := m.Called(ctx, eventID, includePrivate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *EventServiceMock) Update(ctx context.Context, eventID uuid.UUID, params model.UpdateEventParams) (*model.Event, error) {
	args := m.Called(ctx, eventID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *EventServiceMock) Publish(ctx context.Context, eventID uuid.UUID) (*model.Event, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *EventServiceMock) Cancel(ctx context.Context, eventID uuid.UUID) (*model.Event, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *EventServiceMock) Delete(ctx context.Context, eventID uuid.UUID) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

type RegistrationServiceMock struct {
	mock.Mock
}

func NewRegistrationServiceMock() *RegistrationServiceMock {
	return &RegistrationServiceMock{}
}

func (m *RegistrationServiceMock) Create(ctx context.Context, eventID uuid.UUID, notes *string, actingUser *model.User) (*model.Registration, error) {
	args := m.Called(ctx, eventID, notes, actingUser)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Registration), args.Error(1)
}

func (m *RegistrationServiceMock) Cancel(ctx context.Context, registrationID uuid.UUID, actingUser *model.User) (*model.Registration, error) {
	args := m.Called(ctx, registrationID, actingUser)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Registration), args.Error(1)
}

func (m *RegistrationServiceMock) Validate(ctx context.Context, registrationID uuid.UUID) (*model.Registration, error) {
	args := m.Called(ctx, registrationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Registration), args.Error(1)
}

func (m *RegistrationServiceMock) Refuse(ctx context.Context, registrationID uuid.UUID) (*model.Registration, error) {
	args := m.Called(ctx, registrationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Registration), args.Error(1)
}

func (m *RegistrationServiceMock) Update(ctx context.Context, registrationID uuid.UUID, params model.UpdateRegistrationParams) (*model.Registration, error) {
	args := m.Called(ctx, registrationID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Registration), args.Error(1)
}

func (m *RegistrationServiceMock) Remove(ctx context.Context, registrationID uuid.UUID) error {
	args := m.Called(ctx, registrationID)
	return args.Error(0)
}

func (m *RegistrationServiceMock) List(ctx context.Context) ([]*model.RegistrationDetail, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.RegistrationDetail), args.Error(1)
}

func (m *RegistrationServiceMock) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*model.RegistrationDetail, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.RegistrationDetail), args.Error(1)
}

func (m *RegistrationServiceMock) ListPendingByEvent(ctx context.Context, eventID uuid.UUID) ([]*model.RegistrationDetail, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.RegistrationDetail), args.Error(1)
}

func (m *RegistrationServiceMock) ListByUser(ctx context.Context, userID int) ([]*model.RegistrationDetail, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.RegistrationDetail), args.Error(1)
}

func (m *RegistrationServiceMock) GetByRegistrationID(ctx context.Context, registrationID uuid.UUID) (*model.RegistrationDetail, error) {
	args := m.Called(ctx, registrationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RegistrationDetail), args.Error(1)
}

func (m *RegistrationServiceMock) IsRegistered(ctx context.Context, userID int, eventID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *RegistrationServiceMock) GetEventStats(ctx context.Context, eventID uuid.UUID) (*model.EventStats, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EventStats), args.Error(1)
}
