// Package queue implements the durable queue transport for event posts on
// top of gocloud.dev/pubsub. Delivery is at-least-once: Ack maps to complete,
// Nack maps to abandon, and redelivery backoff is owned by the provider.
package queue

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"
	"gocloud.dev/pubsub"

	"github.com/allisson/eventpost/internal/ingest/domain"

	// Register pubsub drivers
	_ "gocloud.dev/pubsub/awssnssqs"
	_ "gocloud.dev/pubsub/gcppubsub"
	_ "gocloud.dev/pubsub/mempubsub"
)

// PubSubQueue is the gocloud.dev-backed queue transport for event posts.
type PubSubQueue struct {
	subscription *pubsub.Subscription
	topic        *pubsub.Topic
}

// Open opens the topic and subscription for the configured URLs. The topic is
// opened first; the in-memory driver requires it to exist before subscribing.
// Supports: mem://, awssqs://, awssnssqs://, gcppubsub://
func Open(ctx context.Context, subscriptionURL, topicURL string) (*PubSubQueue, error) {
	topic, err := pubsub.OpenTopic(ctx, topicURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open queue topic: %w", err)
	}

	subscription, err := pubsub.OpenSubscription(ctx, subscriptionURL)
	if err != nil {
		_ = topic.Shutdown(ctx)
		return nil, fmt.Errorf("failed to open queue subscription: %w", err)
	}

	return &PubSubQueue{
		subscription: subscription,
		topic:        topic,
	}, nil
}

// Dequeue blocks until one queue entry is leased or ctx is done.
func (q *PubSubQueue) Dequeue(ctx context.Context) (*domain.QueueEntry, error) {
	msg, err := q.subscription.Receive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to receive queue entry: %w", err)
	}

	var info domain.EventPostInfo
	if err := json.Unmarshal(msg.Body, &info); err != nil {
		// A malformed envelope can never be processed; drop it permanently.
		msg.Ack()
		return nil, fmt.Errorf("failed to decode queue entry body: %w", err)
	}

	return &domain.QueueEntry{
		ID:      msg.LoggableID,
		Value:   &info,
		Status:  domain.StatusDequeued,
		Receipt: msg,
	}, nil
}

// Complete permanently acknowledges the entry.
func (q *PubSubQueue) Complete(ctx context.Context, entry *domain.QueueEntry) error {
	msg, ok := entry.Receipt.(*pubsub.Message)
	if !ok {
		return fmt.Errorf("queue entry %s carries no transport receipt", entry.ID)
	}
	msg.Ack()
	entry.Status = domain.StatusCompleted
	return nil
}

// Abandon releases the lease without acknowledging, allowing the transport to
// redeliver per its own retry policy. Providers without Nack support fall
// back to lease expiry.
func (q *PubSubQueue) Abandon(ctx context.Context, entry *domain.QueueEntry) error {
	msg, ok := entry.Receipt.(*pubsub.Message)
	if !ok {
		return fmt.Errorf("queue entry %s carries no transport receipt", entry.ID)
	}
	if msg.Nackable() {
		msg.Nack()
	}
	entry.Status = domain.StatusAbandoned
	return nil
}

// Enqueue submits a new event post reference. The payload itself must already
// be in blob storage under info.FilePath; only the metadata envelope travels
// on the queue.
func (q *PubSubQueue) Enqueue(ctx context.Context, info *domain.EventPostInfo) error {
	body, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to encode queue entry body: %w", err)
	}

	if err := q.topic.Send(ctx, &pubsub.Message{Body: body}); err != nil {
		return fmt.Errorf("failed to enqueue event post: %w", err)
	}
	return nil
}

// Shutdown flushes and closes the subscription and topic.
func (q *PubSubQueue) Shutdown(ctx context.Context) error {
	subErr := q.subscription.Shutdown(ctx)
	topicErr := q.topic.Shutdown(ctx)
	if subErr != nil {
		return fmt.Errorf("queue subscription shutdown: %w", subErr)
	}
	if topicErr != nil {
		return fmt.Errorf("queue topic shutdown: %w", topicErr)
	}
	return nil
}
