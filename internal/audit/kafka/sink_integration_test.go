//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"finvoice/internal/audit"
	"finvoice/internal/audit/kafka"
	"finvoice/pkg/testutil/containers"
)

func TestSinkProducesEvents(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	redpanda := containers.NewRedpandaContainer(t)

	const topic = "finvoice.audit.test"
	sink, err := kafka.NewSink(ctx, []string{redpanda.Broker}, topic)
	require.NoError(t, err)
	t.Cleanup(sink.Close)

	events := []audit.Event{
		{
			ID:        uuid.NewString(),
			Action:    audit.ActionInvoiceMinted,
			Actor:     "ST2TEST",
			EntityID:  0,
			Amount:    1000,
			Height:    1,
			Timestamp: time.Now().UTC(),
		},
		{
			ID:        uuid.NewString(),
			Action:    audit.ActionInvoicePaid,
			Actor:     "ST2TEST",
			EntityID:  0,
			Height:    2,
			Timestamp: time.Now().UTC(),
		},
	}
	for _, e := range events {
		require.NoError(t, sink.Emit(ctx, e))
	}

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(redpanda.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	t.Cleanup(consumer.Close)

	deadline, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var got []audit.Event
	for len(got) < len(events) {
		fetches := consumer.PollFetches(deadline)
		require.NoError(t, fetches.Err())
		fetches.EachRecord(func(record *kgo.Record) {
			require.Equal(t, "ST2TEST", string(record.Key))
			var e audit.Event
			require.NoError(t, json.Unmarshal(record.Value, &e))
			got = append(got, e)
		})
	}

	require.Len(t, got, 2)
	require.Equal(t, events[0].ID, got[0].ID)
	require.Equal(t, audit.ActionInvoiceMinted, got[0].Action)
	require.Equal(t, events[1].ID, got[1].ID)
	require.Equal(t, audit.ActionInvoicePaid, got[1].Action)
}

func TestSinkUnreachableBroker(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := kafka.NewSink(ctx, []string{"127.0.0.1:1"}, "finvoice.audit.test")
	require.Error(t, err)
}
