package notifications

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
)

type fakeChannel struct {
	name string
	err  error

	mu     sync.Mutex
	events []Event
}

func (f *fakeChannel) Name() string { return f.name }

func (f *fakeChannel) Send(_ context.Context, event Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.err
}

func (f *fakeChannel) sent() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildUnknownChannel(t *testing.T) {
	_, err := Build(map[string]map[string]any{"nope": {}}, testLogger())
	if err == nil {
		t.Error("Build() error = nil, want unknown channel error")
	}
}

func TestBuildConstructsRegisteredChannels(t *testing.T) {
	Register("fake", func(config map[string]any, logger *slog.Logger) (Channel, error) {
		name, _ := config["name"].(string)
		if name == "" {
			return nil, errors.New("fake channel requires \"name\"")
		}
		return &fakeChannel{name: name}, nil
	})

	channels, err := Build(map[string]map[string]any{"fake": {"name": "one"}}, testLogger())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if len(channels) != 1 || channels[0].Name() != "one" {
		t.Errorf("Build() = %v, want one channel named %q", channels, "one")
	}

	// A factory failure must surface as a configuration error.
	if _, err := Build(map[string]map[string]any{"fake": {}}, testLogger()); err == nil {
		t.Error("Build() error = nil, want factory error")
	}
}

func TestDispatchSendsToAllChannels(t *testing.T) {
	a := &fakeChannel{name: "a"}
	b := &fakeChannel{name: "b"}
	event := Event{
		Type:    EventPatchDone,
		Payload: PatchDonePayload{Target: "aiService.ts", Replacements: 11, Changed: true},
	}

	Dispatch(context.Background(), testLogger(), []Channel{a, b}, event)

	for _, ch := range []*fakeChannel{a, b} {
		got := ch.sent()
		if len(got) != 1 {
			t.Fatalf("channel %s received %d events, want 1", ch.name, len(got))
		}
		if got[0].Type != EventPatchDone {
			t.Errorf("channel %s event type = %q, want %q", ch.name, got[0].Type, EventPatchDone)
		}
	}
}

func TestDispatchToleratesFailingChannel(t *testing.T) {
	failing := &fakeChannel{name: "failing", err: errors.New("unreachable")}
	working := &fakeChannel{name: "working"}

	// Must not panic or block; the working channel still gets the event.
	Dispatch(context.Background(), testLogger(), []Channel{failing, working},
		Event{Type: EventPatchError, Payload: PatchErrorPayload{ErrorMessage: "boom"}})

	if len(working.sent()) != 1 {
		t.Errorf("working channel received %d events, want 1", len(working.sent()))
	}
}

func TestDispatchNoChannels(t *testing.T) {
	// Nothing configured: Dispatch is a no-op.
	Dispatch(context.Background(), testLogger(), nil, Event{Type: EventPatchDone})
}
