package outbox

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AchilleasB/coiipa/training-service/internal/core/ports"
	"github.com/AchilleasB/coiipa/training-service/internal/mocks"
)

type fakeTx struct {
	marked []string
	err    error
}

func (f *fakeTx) ExecContext(_ context.Context, _ string, args ...any) (sql.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.marked = append(f.marked, args[0].(string))
	return nil, nil
}

func event(id, eventType, payload string) ports.OutboxEvent {
	return ports.OutboxEvent{ID: id, EventType: eventType, Payload: []byte(payload)}
}

func TestDeliver_PublishesAndMarks(t *testing.T) {
	pub := mocks.NewMockEventPublisher()
	relay := NewRelay(nil, "", pub, nil)
	tx := &fakeTx{}

	err := relay.deliver(context.Background(), tx, event("e1", ports.EventMemberRegistered, `{"national_id":"12345678A"}`))

	require.NoError(t, err)
	require.Len(t, pub.GetPublishedEvents(), 1)
	assert.Equal(t, ports.EventMemberRegistered, pub.GetPublishedEvents()[0].EventType)
	assert.Equal(t, []string{"e1"}, tx.marked)
}

func TestDeliver_InvalidPayloadIsMarkedNotPublished(t *testing.T) {
	pub := mocks.NewMockEventPublisher()
	relay := NewRelay(nil, "", pub, nil)
	tx := &fakeTx{}

	err := relay.deliver(context.Background(), tx, event("e1", ports.EventEnrollmentOpened, `{broken`))

	require.NoError(t, err)
	assert.Zero(t, pub.PublishCallCount)
	assert.Equal(t, []string{"e1"}, tx.marked)
}

func TestDeliver_PublishFailureLeavesEventPending(t *testing.T) {
	pub := mocks.NewMockEventPublisher()
	pub.PublishError = errors.New("broker unavailable")
	relay := NewRelay(nil, "", pub, nil)
	tx := &fakeTx{}

	err := relay.deliver(context.Background(), tx, event("e1", ports.EventEnrollmentOpened, `{}`))

	assert.ErrorIs(t, err, errPublish)
	assert.Empty(t, tx.marked)
}

func TestPublishFailuresDoNotTripDatabaseBreaker(t *testing.T) {
	pub := mocks.NewMockEventPublisher()
	pub.PublishError = errors.New("broker unavailable")
	relay := NewRelay(nil, "", pub, nil)
	tx := &fakeTx{}

	for i := 0; i < 5; i++ {
		_, err := relay.dbCB.Execute(func() (interface{}, error) {
			return nil, relay.deliver(context.Background(), tx, event("e1", ports.EventEnrollmentOpened, `{}`))
		})
		assert.Error(t, err)
	}

	assert.Equal(t, gobreaker.StateClosed, relay.dbCB.State())
	assert.True(t, relay.IsReady())
}

func TestDeliverBatch_SkipsFailedPublishes(t *testing.T) {
	pub := &flakyPublisher{failID: "e2"}
	relay := NewRelay(nil, "", pub, nil)
	tx := &fakeTx{}

	err := relay.deliverBatch(context.Background(), tx, []ports.OutboxEvent{
		event("e1", ports.EventMemberRegistered, `{}`),
		event("e2", ports.EventMemberRegistered, `{}`),
		event("e3", ports.EventEnrollmentOpened, `{}`),
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e3"}, tx.marked)
}

func TestDeliverBatch_MarkFailureAborts(t *testing.T) {
	relay := NewRelay(nil, "", mocks.NewMockEventPublisher(), nil)
	tx := &fakeTx{err: errors.New("connection reset")}

	err := relay.deliverBatch(context.Background(), tx, []ports.OutboxEvent{event("e1", ports.EventMemberRegistered, `{}`)})

	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	relay := NewRelay(nil, "", mocks.NewMockEventPublisher(), nil)

	assert.True(t, relay.IsHealthy())
	assert.True(t, relay.IsReady())

	relay.healthy.Store(false)
	assert.False(t, relay.IsHealthy())
	assert.False(t, relay.IsReady())
}

type flakyPublisher struct {
	failID string
}

func (p *flakyPublisher) Publish(_ context.Context, evt ports.OutboxEvent) error {
	if evt.ID == p.failID {
		return errors.New("nack")
	}
	return nil
}
