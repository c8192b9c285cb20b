package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shoptrack/apiserver/internal/hub"
	"github.com/shoptrack/apiserver/internal/metrics"
)

// Dispatcher turns store mutations into live-update notifications. It
// always wakes the local hub; when a broker backend is present it also
// re-publishes the event so other instances wake their clients.
//
// Publish failures are swallowed on purpose: the write already committed
// and must look successful to the HTTP caller. The failure leaves a log
// line and a counter instead.
type Dispatcher struct {
	hub        *hub.Hub
	backend    Backend
	instanceID string
}

func NewDispatcher(h *hub.Hub, backend Backend) *Dispatcher {
	return &Dispatcher{
		hub:        h,
		backend:    backend,
		instanceID: uuid.NewString(),
	}
}

// OrderChanged fans the change signal out. Never returns an error.
func (d *Dispatcher) OrderChanged(ctx context.Context, orderID int, action string) {
	d.hub.NotifyAll()

	if d.backend == nil {
		return
	}

	event := ChangeEvent{Entity: "repair_order", ID: orderID, Action: action}
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("marshal change event failed", "error", err)
		return
	}

	attrs := map[string]string{originAttribute: d.instanceID}
	if _, err := d.backend.Publish(ctx, Channel, data, attrs); err != nil {
		slog.Warn("publish change event failed", "error", err)
		metrics.EventsPublishFailuresTotal.Inc()
	}
}

// Run consumes foreign change events and wakes the local hub for each.
// It blocks until ctx is cancelled or the subscription fails.
func (d *Dispatcher) Run(ctx context.Context) error {
	if d.backend == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	return d.backend.Subscribe(ctx, Channel, func(ctx context.Context, msg Message) error {
		if msg.Attributes[originAttribute] == d.instanceID {
			return nil
		}
		d.hub.NotifyAll()
		return nil
	})
}

// Close shuts down the broker backend, if any.
func (d *Dispatcher) Close() error {
	if d.backend == nil {
		return nil
	}
	return d.backend.Close()
}
