package events

import (
	"testing"

	"github.com/shoptrack/apiserver/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueSuffixDistinctPerInstance(t *testing.T) {
	first := queueSuffix(config.RabbitMQConfig{})
	second := queueSuffix(config.RabbitMQConfig{})

	assert.NotEmpty(t, first)
	assert.NotEmpty(t, second)
	assert.NotEqual(t, first, second, "default suffixes must not collide")

	// Distinct suffixes give every instance its own queue on the shared
	// fanout exchange; a shared queue would round-robin events to a
	// single consumer instead of waking all instances.
	assert.NotEqual(t,
		subscriberQueueName(Channel, first),
		subscriberQueueName(Channel, second),
	)
}

func TestQueueSuffixConfigured(t *testing.T) {
	suffix := queueSuffix(config.RabbitMQConfig{QueueSuffix: "-node-a"})
	assert.Equal(t, "-node-a", suffix)
	assert.Equal(t, "repair-order-changes-node-a", subscriberQueueName(Channel, suffix))
}

func TestNewMessageIDShape(t *testing.T) {
	seen := make(map[string]struct{})
	for range 32 {
		id := newMessageID()
		require.Len(t, id, 32)
		_, dup := seen[id]
		require.False(t, dup, "message ids must not repeat")
		seen[id] = struct{}{}
	}
}
