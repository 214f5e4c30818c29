package outbox

// Event is the domain event envelope written to the outbox table. The Kafka
// topic an event is published on equals its EventType.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}
