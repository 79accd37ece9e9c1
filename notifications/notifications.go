// Package notifications delivers patch lifecycle events to configured
// push channels.
package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"
)

// EventType identifies the kind of lifecycle event.
type EventType string

const (
	// EventPatchDone fires after a successful save.
	EventPatchDone EventType = "patch_done"
	// EventPatchError fires when a run fails.
	EventPatchError EventType = "patch_error"
)

// PatchDonePayload carries details of a completed run.
type PatchDonePayload struct {
	Target       string
	Replacements int
	Changed      bool
}

// PatchErrorPayload carries the failure message.
type PatchErrorPayload struct {
	Target       string
	ErrorMessage string
}

// Event is a lifecycle event delivered to every configured channel.
type Event struct {
	Type    EventType
	Payload any
}

// Channel delivers events to one external destination.
type Channel interface {
	Name() string
	Send(ctx context.Context, event Event) error
}

// Factory builds a channel from its configuration block.
type Factory func(config map[string]any, logger *slog.Logger) (Channel, error)

var factories = map[string]Factory{}

// Register makes a channel factory available under name. Channel
// implementations call it from init.
func Register(name string, factory Factory) {
	factories[name] = factory
}

// Build constructs one channel per configuration block, in name order.
// An unknown channel name is a configuration error.
func Build(configs map[string]map[string]any, logger *slog.Logger) ([]Channel, error) {
	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Strings(names)

	var channels []Channel
	for _, name := range names {
		factory, ok := factories[name]
		if !ok {
			return nil, fmt.Errorf("unknown notification channel %q", name)
		}
		ch, err := factory(configs[name], logger)
		if err != nil {
			return nil, fmt.Errorf("failed to configure %s channel: %w", name, err)
		}
		channels = append(channels, ch)
	}
	return channels, nil
}

// Dispatch sends event to every channel concurrently. Delivery is
// best-effort: failures are logged per channel, never returned.
func Dispatch(ctx context.Context, logger *slog.Logger, channels []Channel, event Event) {
	if len(channels) == 0 {
		return
	}
	var g errgroup.Group
	for _, ch := range channels {
		ch := ch
		g.Go(func() error {
			if err := ch.Send(ctx, event); err != nil {
				logger.Error("notification failed", "channel", ch.Name(), "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}
