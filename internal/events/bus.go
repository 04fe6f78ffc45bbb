package events

import (
	"sync"

	"github.com/wwwqqqzzz/digital-workspace-os/internal/shared/types"
)

// WorkspaceSink receives workspace lifecycle notifications
type WorkspaceSink func(types.WorkspaceEvent)

// TabSink receives tab lifecycle notifications
type TabSink func(types.TabEvent)

// Bus fans out workspace and tab events to attached subscribers.
type Bus struct {
	mu             sync.RWMutex
	nextID         int
	workspaceSinks map[int]WorkspaceSink
	tabSinks       map[int]TabSink
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		workspaceSinks: make(map[int]WorkspaceSink),
		tabSinks:       make(map[int]TabSink),
	}
}

// SubscribeWorkspace attaches a workspace sink. The returned function
// detaches it.
func (b *Bus) SubscribeWorkspace(sink WorkspaceSink) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.workspaceSinks[id] = sink
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.workspaceSinks, id)
		b.mu.Unlock()
	}
}

// SubscribeTab attaches a tab sink. The returned function detaches it.
func (b *Bus) SubscribeTab(sink TabSink) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.tabSinks[id] = sink
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.tabSinks, id)
		b.mu.Unlock()
	}
}

// PublishWorkspace delivers an event to every attached workspace sink.
// Dropped when none are attached.
func (b *Bus) PublishWorkspace(eventType string, payload interface{}) {
	b.mu.RLock()
	sinks := make([]WorkspaceSink, 0, len(b.workspaceSinks))
	for _, s := range b.workspaceSinks {
		sinks = append(sinks, s)
	}
	b.mu.RUnlock()

	evt := types.WorkspaceEvent{Type: eventType, Payload: payload}
	for _, s := range sinks {
		s(evt)
	}
}

// PublishTab delivers an event to every attached tab sink. Dropped when none
// are attached.
func (b *Bus) PublishTab(eventType string, payload interface{}) {
	b.mu.RLock()
	sinks := make([]TabSink, 0, len(b.tabSinks))
	for _, s := range b.tabSinks {
		sinks = append(sinks, s)
	}
	b.mu.RUnlock()

	evt := types.TabEvent{Type: eventType, Payload: payload}
	for _, s := range sinks {
		s(evt)
	}
}

// Subscribers returns the number of attached sinks across both channels.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.workspaceSinks) + len(b.tabSinks)
}
