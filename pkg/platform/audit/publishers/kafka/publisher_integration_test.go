//go:build integration

package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"grantgate/pkg/platform/audit"
	"grantgate/pkg/testutil/containers"
)

func TestPublisher_EmitDeliversToTopic(t *testing.T) {
	ctx := context.Background()
	redpanda := containers.NewRedpandaContainer(t)

	const topic = "grantgate.audit"
	pub, err := New(ctx, redpanda.Brokers, topic)
	require.NoError(t, err)

	event := audit.Event{
		Category:   audit.CategoryCompliance,
		ActorID:    "admin-1",
		Action:     "status_overridden",
		Resource:   "application",
		ResourceID: "app-1",
		Decision:   "allow",
		Reason:     "duplicate of APP-42",
		RequestID:  "req-1",
	}
	require.NoError(t, pub.Emit(ctx, event))

	// Close flushes the async produce before we consume.
	require.NoError(t, pub.Close())

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(redpanda.Brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	pollCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	fetches := consumer.PollFetches(pollCtx)
	require.NoError(t, fetches.Err())

	records := fetches.Records()
	require.Len(t, records, 1)
	assert.Equal(t, []byte("admin-1"), records[0].Key)

	var wire struct {
		Category   string    `json:"category"`
		Timestamp  time.Time `json:"timestamp"`
		ActorID    string    `json:"actor_id"`
		Action     string    `json:"action"`
		Resource   string    `json:"resource"`
		ResourceID string    `json:"resource_id"`
		Decision   string    `json:"decision"`
		Reason     string    `json:"reason"`
		RequestID  string    `json:"request_id"`
	}
	require.NoError(t, json.Unmarshal(records[0].Value, &wire))
	assert.Equal(t, "compliance", wire.Category)
	assert.Equal(t, "admin-1", wire.ActorID)
	assert.Equal(t, "status_overridden", wire.Action)
	assert.Equal(t, "application", wire.Resource)
	assert.Equal(t, "app-1", wire.ResourceID)
	assert.Equal(t, "duplicate of APP-42", wire.Reason)
	assert.False(t, wire.Timestamp.IsZero(), "emit should stamp a timestamp")
}

func TestPublisher_New_Validation(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, nil, "grantgate.audit")
	assert.ErrorContains(t, err, "broker")

	_, err = New(ctx, []string{"localhost:9092"}, "")
	assert.ErrorContains(t, err, "topic")
}
