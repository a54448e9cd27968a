package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisabledProducerIsNoOp(t *testing.T) {
	p := NewProducer("")
	require.False(t, p.Enabled())

	err := p.PublishEvent(context.Background(), TopicUserEvents, "1", map[string]any{
		"type": "user_registered",
	})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestEnabledProducerHasWriter(t *testing.T) {
	p := NewProducer("localhost:9092")
	require.True(t, p.Enabled())
	require.NoError(t, p.Close())
}
