package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"
)

const (
	TopicOrderCreated   = "solestore.order.created"
	TopicOrderPaid      = "solestore.order.paid"
	TopicOrderCancelled = "solestore.order.cancelled"
)

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{writer: writer}
}

// Publish writes one message to the given topic, keyed for per-order
// partition ordering.
func (p *Producer) Publish(topic string, key string, value []byte) error {
	return p.writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: value,
		},
	)
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
