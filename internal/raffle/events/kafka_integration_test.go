//go:build integration

package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"raffle/internal/raffle/events"
	"raffle/internal/raffle/models"
	id "raffle/pkg/domain"
	"raffle/pkg/testutil/containers"
)

const topic = "raffle.winner-selected"

type KafkaPublisherSuite struct {
	suite.Suite
	redpanda *containers.RedpandaContainer
	client   *kgo.Client
}

func TestKafkaPublisherSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaPublisherSuite))
}

func (s *KafkaPublisherSuite) SetupSuite() {
	s.redpanda = containers.NewRedpandaContainer(s.T())

	client, err := kgo.NewClient(kgo.SeedBrokers(s.redpanda.Brokers...))
	s.Require().NoError(err)
	s.client = client

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	admin := kadm.NewClient(client)
	s.Require().NoError(events.EnsureTopic(ctx, admin, topic, 1, 1))
	s.Require().NoError(events.EnsureTopic(ctx, admin, topic, 1, 1), "ensure must be idempotent")
}

func (s *KafkaPublisherSuite) TearDownSuite() {
	if s.client != nil {
		s.client.Close()
	}
}

func (s *KafkaPublisherSuite) TestPublishWinnerSelected() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	want := models.WinnerSelected{
		Raffle:     "escrow",
		RaffleID:   id.RaffleID(12),
		Winner:     id.Identity{0xAB},
		SelectedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	s.Require().NoError(events.NewKafka(s.client, topic).PublishWinnerSelected(ctx, want))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	s.Require().Empty(fetches.Errors())
	records := fetches.Records()
	s.Require().NotEmpty(records)

	s.Equal("12", string(records[0].Key))
	var got models.WinnerSelected
	s.Require().NoError(json.Unmarshal(records[0].Value, &got))
	s.Equal(want, got)
}
