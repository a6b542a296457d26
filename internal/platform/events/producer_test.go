package events

import (
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/rs/zerolog"
)

func newTestProducer(t *testing.T) (*KafkaProducer, *mocks.SyncProducer) {
	t.Helper()
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	mock := mocks.NewSyncProducer(t, config)
	p := &KafkaProducer{
		producer: mock,
		logger:   zerolog.New(os.Stderr),
	}
	return p, mock
}

func TestPublishOrderCreated(t *testing.T) {
	p, mock := newTestProducer(t)
	defer p.Close()

	mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event OrderCreatedEvent
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.OrderID != "ord-1" {
			return errors.New("unexpected order id: " + event.OrderID)
		}
		if event.EventTime.IsZero() {
			return errors.New("event time not set")
		}
		return nil
	})

	err := p.PublishOrderCreated(OrderCreatedEvent{
		OrderID:    "ord-1",
		CustomerID: "cust-1",
		PharmacyID: "pharm-1",
		TotalCents: 4250,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("PublishOrderCreated: %v", err)
	}
}

func TestPublishOrderStatusChanged(t *testing.T) {
	p, mock := newTestProducer(t)
	defer p.Close()

	mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event OrderStatusChangedEvent
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.FromStatus != "placed" || event.ToStatus != "accepted" {
			return errors.New("unexpected transition")
		}
		return nil
	})

	err := p.PublishOrderStatusChanged(OrderStatusChangedEvent{
		OrderID:    "ord-2",
		CustomerID: "cust-1",
		PharmacyID: "pharm-1",
		FromStatus: "placed",
		ToStatus:   "accepted",
	})
	if err != nil {
		t.Fatalf("PublishOrderStatusChanged: %v", err)
	}
}

func TestPublishReturnsBrokerError(t *testing.T) {
	p, mock := newTestProducer(t)
	defer p.Close()

	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := p.PublishOrderCreated(OrderCreatedEvent{OrderID: "ord-3"})
	if err == nil {
		t.Fatal("expected error from failed send")
	}
}

func TestNopProducer(t *testing.T) {
	var p Producer = NopProducer{}
	if err := p.PublishOrderCreated(OrderCreatedEvent{OrderID: "x"}); err != nil {
		t.Fatalf("nop PublishOrderCreated: %v", err)
	}
	if err := p.PublishOrderStatusChanged(OrderStatusChangedEvent{OrderID: "x"}); err != nil {
		t.Fatalf("nop PublishOrderStatusChanged: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("nop Close: %v", err)
	}
}
