package service

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"

	"github.com/shopfloor-stats/backend/internal/constant"
	"github.com/shopfloor-stats/backend/internal/model"
)

// EventPublisher announces entry mutations.
type EventPublisher interface {
	PublishEntryChanged(ctx context.Context, event *model.EntryChangedEvent) error
}

type EntryEvents struct {
	JS nats.JetStreamContext
}

func NewEntryEvents(js nats.JetStreamContext) *EntryEvents {
	return &EntryEvents{JS: js}
}

func (s *EntryEvents) PublishEntryChanged(ctx context.Context, event *model.EntryChangedEvent) error {
	b, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msgID := event.EntryID + ":" + event.Action + ":" + event.At.Format(time.RFC3339Nano)
	pub, err := s.JS.PublishAsync(constant.EntrySubjectChanged, b, nats.MsgId(msgID))
	if err != nil {
		return err
	}

	select {
	case err := <-pub.Err():
		return err
	case <-pub.Ok():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Millisecond * 500):
		return fmt.Errorf("timeout waiting for NATS response")
	}
}
