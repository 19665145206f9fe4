package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/esilogis/intervention-service/internal/model"
	"github.com/segmentio/kafka-go"
)

// InterventionEventProducer is the producer contract (swappable with a mock in tests).
type InterventionEventProducer interface {
	ProduceInterventionEvent(ctx context.Context, event string, payload map[string]interface{})
}

// Producer writes intervention lifecycle events to a Kafka topic (best-effort,
// never blocks the API path).
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer returns a producer. With empty brokers or topic all methods are no-ops.
func NewProducer(brokers []string, topic string) *Producer {
	if len(brokers) == 0 || topic == "" {
		return &Producer{}
	}
	return &Producer{
		topic: topic,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// ProduceInterventionEvent sends one event to the topic. Errors are logged and dropped.
func (p *Producer) ProduceInterventionEvent(ctx context.Context, event string, payload map[string]interface{}) {
	if p.writer == nil {
		return
	}
	msg := map[string]interface{}{"event": event}
	for k, v := range payload {
		msg[k] = v
	}
	body, err := json.Marshal(msg)
	if err != nil {
		log.Printf("events: marshal intervention event: %v", err)
		return
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Value: body}); err != nil {
		log.Printf("events: write intervention event: %v", err)
	}
}

// Close closes the underlying writer.
func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// InterventionPayload builds the event payload for an intervention.
func InterventionPayload(iv *model.Intervention) map[string]interface{} {
	if iv == nil {
		return nil
	}
	return map[string]interface{}{
		"intervention_id": int64(iv.ID),
		"description":     iv.Description,
		"status":          string(iv.Status),
		"priority":        string(iv.Priority),
		"type":            string(iv.Type),
		"location_id":     int64(iv.LocationID),
	}
}
