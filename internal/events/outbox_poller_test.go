package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/events"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/repositories/mocks"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	failOn   int
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.failOn > 0 && len(w.messages)+1 == w.failOn {
		return errors.New("leader not available")
	}

	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

var testKafka = config.Kafka{Topic: "storefront.orders", PollInterval: 10 * time.Millisecond, BatchSize: 50}

func orderEvent(eventType string) *models.OutboxEvent {
	payload, _ := json.Marshal(models.OrderEventPayload{OrderID: uuid.New(), TotalPrice: "138.00"})

	return &models.OutboxEvent{ID: uuid.New(), AggregateID: uuid.New(), EventType: eventType, Payload: payload, CreatedAt: time.Now()}
}

func TestOutboxPoller_PublishPending(t *testing.T) {
	t.Run("Success - Events Published In Order", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.OutboxRepository)
		writer := &fakeWriter{}
		poller := events.NewOutboxPoller(mockRepo, writer, testKafka)
		created, paid := orderEvent(models.EventOrderCreated), orderEvent(models.EventOrderPaid)

		mockRepo.On("FetchUnpublished", mock.Anything, 50).Return([]*models.OutboxEvent{created, paid}, nil).Once()
		mockRepo.On("MarkPublished", mock.Anything, created.ID).Return(nil).Once()
		mockRepo.On("MarkPublished", mock.Anything, paid.ID).Return(nil).Once()

		// Act
		n, err := poller.PublishPending(t.Context())

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		require.Len(t, writer.messages, 2)
		assert.Equal(t, []byte(created.AggregateID.String()), writer.messages[0].Key)
		assert.Equal(t, "event_type", writer.messages[1].Headers[0].Key)
		assert.Equal(t, []byte(models.EventOrderPaid), writer.messages[1].Headers[0].Value)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Failure - Publish Error Stops Batch", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.OutboxRepository)
		writer := &fakeWriter{failOn: 2}
		poller := events.NewOutboxPoller(mockRepo, writer, testKafka)
		first, second, third := orderEvent(models.EventOrderCreated), orderEvent(models.EventOrderPaid), orderEvent(models.EventOrderDelivered)

		mockRepo.On("FetchUnpublished", mock.Anything, 50).Return([]*models.OutboxEvent{first, second, third}, nil).Once()
		mockRepo.On("MarkPublished", mock.Anything, first.ID).Return(nil).Once()

		// Act
		n, err := poller.PublishPending(t.Context())

		// Assert
		require.Error(t, err)
		assert.Equal(t, 1, n)
		mockRepo.AssertNotCalled(t, "MarkPublished", mock.Anything, second.ID)
		mockRepo.AssertNotCalled(t, "MarkPublished", mock.Anything, third.ID)
	})

	t.Run("Failure - Fetch Error", func(t *testing.T) {
		// Arrange
		mockRepo := new(mocks.OutboxRepository)
		poller := events.NewOutboxPoller(mockRepo, &fakeWriter{}, testKafka)

		mockRepo.On("FetchUnpublished", mock.Anything, 50).Return(nil, errors.New("connection reset")).Once()

		// Act
		n, err := poller.PublishPending(t.Context())

		// Assert
		require.Error(t, err)
		assert.Zero(t, n)
	})
}

func TestOutboxPoller_Run(t *testing.T) {
	// Arrange
	mockRepo := new(mocks.OutboxRepository)
	writer := &fakeWriter{}
	poller := events.NewOutboxPoller(mockRepo, writer, testKafka)

	mockRepo.On("FetchUnpublished", mock.Anything, 50).Return([]*models.OutboxEvent{}, nil)

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	// Act
	poller.Run(ctx)

	// Assert
	assert.True(t, writer.closed)
	mockRepo.AssertCalled(t, "FetchUnpublished", mock.Anything, 50)
}
