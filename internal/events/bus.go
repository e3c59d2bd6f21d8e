// Package events carries reservation change notifications: subscribers get
// one callback per mutation and unsubscribe by cancelling their context.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"busbenin/internal/utils"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const TopicReservations = "reservations"

// Actions published on the reservations topic.
const (
	ActionCreated         = "created"
	ActionPaymentAttached = "payment_attached"
	ActionReconciled      = "reconciled"
	ActionCanceled        = "canceled"
)

type ReservationEvent struct {
	ReservationID        int64     `json:"reservation_id"`
	Action               string    `json:"action"`
	Statut               string    `json:"statut"`
	StatutPaiement       string    `json:"statut_paiement"`
	FedapayTransactionID string    `json:"fedapay_transaction_id,omitempty"`
	At                   time.Time `json:"at"`
}

// Bus is an in-process pub/sub feed of reservation changes.
type Bus struct {
	pubsub *gochannel.GoChannel
}

func NewBus() *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{}),
	}
}

// PublishReservation emits one event. A nil bus is a no-op so callers do not
// have to guard every mutation site.
func (b *Bus) PublishReservation(ev ReservationEvent) error {
	if b == nil {
		return nil
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.pubsub.Publish(TopicReservations, message.NewMessage(watermill.NewUUID(), payload))
}

// Subscribe returns a channel of raw messages for the reservations topic.
// The subscription ends when ctx is cancelled.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, TopicReservations)
}

func (b *Bus) Close() error {
	if b == nil {
		return nil
	}
	return b.pubsub.Close()
}

// StartAuditLog consumes reservation events and writes one log line per
// mutation. It is the operational trace for the documented failure windows
// (orphan reservations, reconcile gaps) and for normal status changes.
func StartAuditLog(ctx context.Context, b *Bus) error {
	msgs, err := b.Subscribe(ctx)
	if err != nil {
		return err
	}
	go func() {
		for msg := range msgs {
			var ev ReservationEvent
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				utils.LogEvent("", "events", "decode", "événement illisible: "+err.Error())
				msg.Ack()
				continue
			}
			utils.LogEvent("", "events", ev.Action,
				fmt.Sprintf("reservation_id=%d statut=%s statut_paiement=%s", ev.ReservationID, ev.Statut, ev.StatutPaiement))
			msg.Ack()
		}
	}()
	return nil
}
