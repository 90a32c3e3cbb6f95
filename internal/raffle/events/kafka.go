package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"raffle/internal/raffle/models"
)

// EventTypeWinnerSelected is carried in the event_type record header.
const EventTypeWinnerSelected = "winner_selected"

// Kafka publishes notifications to a topic, keyed by raffle id so all events
// for one raffle land on the same partition.
type Kafka struct {
	client *kgo.Client
	topic  string
}

func NewKafka(client *kgo.Client, topic string) *Kafka {
	return &Kafka{client: client, topic: topic}
}

// PublishWinnerSelected produces synchronously and returns the broker error, if any.
func (k *Kafka) PublishWinnerSelected(ctx context.Context, event models.WinnerSelected) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal winner selected: %w", err)
	}
	record := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(event.RaffleID.String()),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(EventTypeWinnerSelected)},
		},
	}
	if err := k.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce winner selected: %w", err)
	}
	return nil
}

// EnsureTopic creates topic if it does not exist.
func EnsureTopic(ctx context.Context, admin *kadm.Client, topic string, partitions int32, replicationFactor int16) error {
	resp, err := admin.CreateTopic(ctx, partitions, replicationFactor, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", topic, resp.Err)
	}
	return nil
}
