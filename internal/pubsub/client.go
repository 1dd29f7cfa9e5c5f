package pubsub

import (
	"context"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// New creates a PubSubClient for the given project.
func New(projectID string) PubSubClient {
	ctx := context.Background()
	pubSubC, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		log.Fatalf("Failed to create pubsub client: %v", err)
	}
	teardown := func() {
		pubSubC.Close()
	}

	return &client{
		client:   pubSubC,
		teardown: teardown,
	}
}

// SendMessage publishes an event to a topic, msgpack-encoded.
func (c *client) SendMessage(topic string, event Event) error {
	ctx := context.Background()
	if event.OccurredAt == 0 {
		event.OccurredAt = time.Now().Unix()
	}

	msgpackData, err := msgpack.Marshal(event)
	if err != nil {
		log.Error("MessagePack marshal error", "error", err)
		return err
	}
	message := &pubsub.Message{
		Data: msgpackData,
	}
	result := c.client.Topic(topic).Publish(ctx, message)
	serverID, err := result.Get(ctx)
	if err != nil {
		log.Error("Failed to publish event", "error", err, "topic", topic, "type", event.Type)
		return err
	}
	log.Info("Published event", "serverID", serverID, "topic", topic, "type", event.Type)
	return nil
}

// ProcessMessage unmarshals MessagePack data into the provided pointer.
func (c *client) ProcessMessage(data []byte, returnValue any) error {
	err := msgpack.Unmarshal(data, returnValue)
	if err != nil {
		log.Error("MessagePack unmarshal error", "error", err)
		return err
	}
	return nil
}

// Close releases the underlying pubsub client.
func (c *client) Close() {
	if c.teardown != nil {
		c.teardown()
	}
}
