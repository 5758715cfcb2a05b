package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"roadassist_backend/internal/common"
)

// MockRepository is a mock type for notification.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, event *Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockRepository) GetByRecipient(ctx context.Context, recipientKey string, page, pageSize int) ([]Event, *common.Pagination, error) {
	args := m.Called(ctx, recipientKey, page, pageSize)
	var events []Event
	if args.Get(0) != nil {
		events = args.Get(0).([]Event)
	}
	var pagination *common.Pagination
	if args.Get(1) != nil {
		pagination = args.Get(1).(*common.Pagination)
	}
	return events, pagination, args.Error(2)
}

func (m *MockRepository) FindByID(ctx context.Context, eventID uuid.UUID, recipientKey string) (*Event, error) {
	args := m.Called(ctx, eventID, recipientKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Event), args.Error(1)
}

func (m *MockRepository) MarkAsRead(ctx context.Context, eventID uuid.UUID, recipientKey string) error {
	args := m.Called(ctx, eventID, recipientKey)
	return args.Error(0)
}

func (m *MockRepository) MarkAllAsRead(ctx context.Context, recipientKey string) (int64, error) {
	args := m.Called(ctx, recipientKey)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) ClearForRecipient(ctx context.Context, recipientKey string) (int64, error) {
	args := m.Called(ctx, recipientKey)
	return args.Get(0).(int64), args.Error(1)
}

func newTestService(repo Repository) (Service, *Bus) {
	bus := NewBus(0)
	return NewService(repo, bus, zap.NewNop()), bus
}

func TestService_PublishPersistsAndFansOut(t *testing.T) {
	mockRepo := new(MockRepository)
	service, bus := newTestService(mockRepo)
	ctx := context.Background()

	var delivered []Event
	unsubscribe := bus.Subscribe(func(e Event) { delivered = append(delivered, e) })
	defer unsubscribe()

	mockRepo.On("Create", ctx, mock.AnythingOfType("*notification.Event")).Return(nil).Once()

	event := NewEvent(TypeBooking, "Mechanic Assigned!", "Jay has been assigned.", "/bookings/history", "customer-c1")
	err := service.Publish(ctx, event)

	assert.NoError(t, err)
	assert.Len(t, delivered, 1)
	assert.Equal(t, "Mechanic Assigned!", delivered[0].Title)
	assert.Equal(t, 1, service.UnreadCount("customer-c1"))
	mockRepo.AssertExpectations(t)
}

func TestService_PublishSurvivesPersistenceFailure(t *testing.T) {
	mockRepo := new(MockRepository)
	service, bus := newTestService(mockRepo)
	ctx := context.Background()

	delivered := 0
	unsubscribe := bus.Subscribe(func(Event) { delivered++ })
	defer unsubscribe()

	mockRepo.On("Create", ctx, mock.AnythingOfType("*notification.Event")).Return(errors.New("db down")).Once()

	err := service.Publish(ctx, NewEvent(TypeJob, "New Job Available!", "m", "", "all"))

	// Live delivery must not depend on the history write.
	assert.NoError(t, err)
	assert.Equal(t, 1, delivered)
	mockRepo.AssertExpectations(t)
}

func TestService_GetForRecipient(t *testing.T) {
	mockRepo := new(MockRepository)
	service, _ := newTestService(mockRepo)
	ctx := context.Background()

	expected := []Event{NewEvent(TypeChat, "New Message", "Jay: on my way", "/bookings/b1/chat", "customer-c1")}
	pagination := common.NewPagination(1, 1, 10)
	mockRepo.On("GetByRecipient", ctx, "customer-c1", 1, 10).Return(expected, pagination, nil).Once()

	events, p, err := service.GetForRecipient(ctx, "customer-c1", 1, 10)

	assert.NoError(t, err)
	assert.Equal(t, expected, events)
	assert.Equal(t, pagination, p)
	mockRepo.AssertExpectations(t)
}

func TestService_GetForRecipientRepoError(t *testing.T) {
	mockRepo := new(MockRepository)
	service, _ := newTestService(mockRepo)
	ctx := context.Background()

	mockRepo.On("GetByRecipient", ctx, "customer-c1", 1, 10).Return(nil, nil, errors.New("db error")).Once()

	_, _, err := service.GetForRecipient(ctx, "customer-c1", 1, 10)

	apiErr, ok := common.IsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, common.ErrInternalServer.Code, apiErr.Code)
	mockRepo.AssertExpectations(t)
}

func TestService_MarkReadUpdatesBusState(t *testing.T) {
	mockRepo := new(MockRepository)
	service, bus := newTestService(mockRepo)
	ctx := context.Background()

	event := NewEvent(TypeBooking, "Work has Begun!", "m", "/bookings/history", "customer-c1")
	bus.Publish(event)

	mockRepo.On("MarkAsRead", ctx, event.ID, "customer-c1").Return(nil).Once()

	err := service.MarkRead(ctx, event.ID, "customer-c1")

	assert.NoError(t, err)
	assert.Zero(t, service.UnreadCount("customer-c1"))
	mockRepo.AssertExpectations(t)
}

func TestService_MarkReadNotFoundPassesThrough(t *testing.T) {
	mockRepo := new(MockRepository)
	service, _ := newTestService(mockRepo)
	ctx := context.Background()

	eventID := uuid.New()
	notFound := common.ErrNotFound.WithDetails("Notification not found or not addressed to recipient.")
	mockRepo.On("MarkAsRead", ctx, eventID, "customer-c1").Return(notFound).Once()

	err := service.MarkRead(ctx, eventID, "customer-c1")

	apiErr, ok := common.IsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, common.ErrNotFound.Code, apiErr.Code)
	mockRepo.AssertExpectations(t)
}

func TestService_MarkAllRead(t *testing.T) {
	mockRepo := new(MockRepository)
	service, bus := newTestService(mockRepo)
	ctx := context.Background()

	bus.Publish(NewEvent(TypeBooking, "a", "m", "", "customer-c1"))
	bus.Publish(NewEvent(TypeBooking, "b", "m", "", "customer-c1"))

	mockRepo.On("MarkAllAsRead", ctx, "customer-c1").Return(int64(2), nil).Once()

	count, err := service.MarkAllRead(ctx, "customer-c1")

	assert.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Zero(t, service.UnreadCount("customer-c1"))
	mockRepo.AssertExpectations(t)
}

func TestService_ClearEmptiesBus(t *testing.T) {
	mockRepo := new(MockRepository)
	service, bus := newTestService(mockRepo)
	ctx := context.Background()

	bus.Publish(NewEvent(TypeBooking, "a", "m", "", "customer-c1"))

	mockRepo.On("ClearForRecipient", ctx, "customer-c1").Return(int64(1), nil).Once()

	count, err := service.Clear(ctx, "customer-c1")

	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Zero(t, service.UnreadCount("customer-c1"))
	mockRepo.AssertExpectations(t)
}

func TestService_ClearIsScopedToRecipient(t *testing.T) {
	mockRepo := new(MockRepository)
	service, bus := newTestService(mockRepo)
	ctx := context.Background()

	bus.Publish(NewEvent(TypeBooking, "customer event", "m", "", "customer-c1"))
	bus.Publish(NewEvent(TypeJob, "mechanic event", "m", "", "mechanic-m1"))

	mockRepo.On("ClearForRecipient", ctx, "customer-c1").Return(int64(1), nil).Once()

	_, err := service.Clear(ctx, "customer-c1")

	assert.NoError(t, err)
	assert.Zero(t, service.UnreadCount("customer-c1"))
	// One actor clearing must not erase another actor's live unread state.
	assert.Equal(t, 1, service.UnreadCount("mechanic-m1"))
	mockRepo.AssertExpectations(t)
}
