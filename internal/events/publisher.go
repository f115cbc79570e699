// Package events emits post lifecycle notifications for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"
)

// PostPublished is emitted after a post document has been created and its
// announcement dispatched.
type PostPublished struct {
	PostID      string    `json:"post_id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
}

// Publisher emits lifecycle events.
type Publisher interface {
	PublishPostPublished(ctx context.Context, event PostPublished) error
	Close() error
}

// PubSubPublisher emits events onto a Google Cloud Pub/Sub topic.
type PubSubPublisher struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

var _ Publisher = (*PubSubPublisher)(nil)

// NewPubSubPublisher connects to the topic using Application Default
// Credentials and verifies it exists.
func NewPubSubPublisher(ctx context.Context, projectID, topicID string) (*PubSubPublisher, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("events: create pubsub client: %w", err)
	}
	topic := client.Topic(topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("events: check topic %q: %w", topicID, err)
	}
	if !exists {
		_ = client.Close()
		return nil, fmt.Errorf("events: topic %q does not exist in project %q", topicID, projectID)
	}
	return &PubSubPublisher{client: client, topic: topic}, nil
}

// PublishPostPublished implements Publisher. The call blocks until the server
// acknowledges the message so failures surface to the caller.
func (p *PubSubPublisher) PublishPostPublished(ctx context.Context, event PostPublished) error {
	data, err := encodeEvent(event)
	if err != nil {
		return err
	}
	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{"event": "post.published", "slug": event.Slug},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("events: publish: %w", err)
	}
	return nil
}

// Close implements Publisher.
func (p *PubSubPublisher) Close() error {
	p.topic.Stop()
	return p.client.Close()
}

func encodeEvent(event PostPublished) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("events: encode event: %w", err)
	}
	return data, nil
}

// NoOpPublisher discards events. Used when no broker is configured.
type NoOpPublisher struct{}

var _ Publisher = (*NoOpPublisher)(nil)

// PublishPostPublished implements Publisher.
func (NoOpPublisher) PublishPostPublished(context.Context, PostPublished) error { return nil }

// Close implements Publisher.
func (NoOpPublisher) Close() error { return nil }
