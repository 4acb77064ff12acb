package pkgkafka

import (
	"context"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/sirupsen/logrus"
)

type KafkaProducer struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaProducer(cfg *KafkaConfig) (*KafkaProducer, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":  cfg.Host,
		"acks":               cfg.Acks,
		"enable.idempotence": true,
	})
	if err != nil {
		return nil, err
	}

	go func() {
		for e := range p.Events() {
			switch ev := e.(type) {
			case kafka.Error:
				logrus.WithFields(logrus.Fields{
					"CODE": ev.Code(),
				}).WithError(ev).Warn("Producer error")
			}
		}
	}()

	return &KafkaProducer{
		producer: p,
		topic:    cfg.Topic,
	}, nil
}

// Produce blocks until the broker acknowledges the message or ctx is done.
func (p *KafkaProducer) Produce(ctx context.Context, key string, msg []byte) error {
	delivery := make(chan kafka.Event, 1)
	err := p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &p.topic, Partition: kafka.PartitionAny},
		Key:            []byte(key),
		Value:          msg,
	}, delivery)
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case e := <-delivery:
		m, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected delivery event %v", e)
		}
		if m.TopicPartition.Error != nil {
			return m.TopicPartition.Error
		}
		logrus.WithFields(logrus.Fields{
			"PRTN":   m.TopicPartition.Partition,
			"OFFSET": m.TopicPartition.Offset,
		}).Debug("Delivery success")
		return nil
	}
}

func (p *KafkaProducer) Close() {
	p.producer.Flush(5_000)
	p.producer.Close()
}
