//go:build integration

package alert_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"storeops/internal/alert"
	"storeops/internal/platform/config"
	"storeops/internal/platform/kafka"
	id "storeops/pkg/domain"
	"storeops/pkg/testutil/containers"
)

type KafkaPublisherSuite struct {
	suite.Suite
	broker   string
	producer *kgo.Client
}

func TestKafkaPublisherSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaPublisherSuite))
}

func (s *KafkaPublisherSuite) SetupSuite() {
	s.broker = containers.GetManager().GetRedpanda(s.T()).Broker
	client, err := kafka.New(context.Background(), config.KafkaConfig{
		Brokers:     []string{s.broker},
		AlertsTopic: "unused",
		ClientID:    "storeops-test",
	})
	s.Require().NoError(err)
	s.producer = client
}

func (s *KafkaPublisherSuite) TearDownSuite() {
	if s.producer != nil {
		s.producer.Close()
	}
}

func (s *KafkaPublisherSuite) consume(ctx context.Context, topic string, want int) []*kgo.Record {
	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	var records []*kgo.Record
	for len(records) < want {
		fetches := consumer.PollFetches(ctx)
		s.Require().NoError(ctx.Err(), "timed out waiting for records")
		fetches.EachRecord(func(r *kgo.Record) {
			records = append(records, r)
		})
	}
	return records
}

func (s *KafkaPublisherSuite) TestPublishedAlertIsKeyedByTenant() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	topic := "alerts-" + uuid.NewString()
	s.Require().NoError(kafka.EnsureTopic(ctx, s.producer, topic, 3))
	// A second call on an existing topic is a no-op.
	s.Require().NoError(kafka.EnsureTopic(ctx, s.producer, topic, 3))

	pub, err := alert.NewKafkaPublisher(s.producer, topic)
	s.Require().NoError(err)

	tenantID := id.TenantID(uuid.New())
	sent := alert.NewAutoClockout(alert.AutoClockout{
		TenantID:        tenantID,
		StoreID:         "Lawrence",
		ManagerUsername: "maria",
		EmployeeID:      id.EmployeeID(uuid.New()),
		EmployeeName:    "Ana Ruiz",
		ClockOut:        time.Date(2024, 6, 3, 21, 30, 0, 0, time.UTC),
		Closing:         "21:00",
		Timezone:        "UTC",
		HoursWorked:     12.42,
	})
	s.Require().NoError(pub.Publish(ctx, sent))

	records := s.consume(ctx, topic, 1)
	s.Require().Len(records, 1)
	rec := records[0]
	s.Equal(tenantID.String(), string(rec.Key))
	s.Require().Len(rec.Headers, 1)
	s.Equal("alert_type", rec.Headers[0].Key)
	s.Equal(string(alert.TypeAutoClockout), string(rec.Headers[0].Value))

	var got alert.Alert
	s.Require().NoError(json.Unmarshal(rec.Value, &got))
	s.Equal(sent.ID, got.ID)
	s.Equal(tenantID, got.TenantID)
	s.Equal("maria", got.ManagerUsername)
	s.Contains(got.Message, "Hours recorded: 12.42.")
}

func (s *KafkaPublisherSuite) TestTenantOrderingWithinPartition() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	topic := "alerts-" + uuid.NewString()
	s.Require().NoError(kafka.EnsureTopic(ctx, s.producer, topic, 3))
	pub, err := alert.NewKafkaPublisher(s.producer, topic)
	s.Require().NoError(err)

	tenantID := id.TenantID(uuid.New())
	names := []string{"Ana Ruiz", "Ben Okafor", "Cam Patel"}
	for _, name := range names {
		s.Require().NoError(pub.Publish(ctx, alert.NewLateClockIn(alert.LateClockIn{
			TenantID:     tenantID,
			StoreID:      "Lawrence",
			EmployeeID:   id.EmployeeID(uuid.New()),
			EmployeeName: name,
			ClockIn:      time.Date(2024, 6, 3, 9, 20, 0, 0, time.UTC),
			Opening:      "09:00",
			Timezone:     "UTC",
			MinutesLate:  20,
		})))
	}

	records := s.consume(ctx, topic, len(names))
	s.Require().Len(records, len(names))
	for i, rec := range records {
		s.Equal(records[0].Partition, rec.Partition)
		var got alert.Alert
		s.Require().NoError(json.Unmarshal(rec.Value, &got))
		s.Equal(names[i], got.EmployeeName)
		s.Equal(alert.TypeLateClockIn, got.Type)
	}
}
