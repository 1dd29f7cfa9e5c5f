package pubsub

// PubSubClient defines the interface for publishing and decoding events.
// This allows for mock implementations to be used in tests.
type PubSubClient interface {
	SendMessage(topic string, event Event) error
	ProcessMessage(data []byte, returnValue any) error
	Close()
}
