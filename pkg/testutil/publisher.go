package testutil

import (
	"context"
	"sync"

	"github.com/manalab/backend/pkg/pubsub"
)

type PublishedMessage struct {
	Topic string
	Pack  *pubsub.Pack
}

// MockPublisher keeps every successfully published message. PublishFunc, if set, decides
// whether a publish fails.
type MockPublisher struct {
	PublishFunc func(ctx context.Context, topic string, pack *pubsub.Pack) error

	mu       sync.Mutex
	messages []PublishedMessage
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, pack *pubsub.Pack) error {
	if m.PublishFunc != nil {
		if err := m.PublishFunc(ctx, topic, pack); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, PublishedMessage{Topic: topic, Pack: pack})
	return nil
}

func (m *MockPublisher) Messages() []PublishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PublishedMessage(nil), m.messages...)
}
