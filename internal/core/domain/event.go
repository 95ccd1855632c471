package domain

import (
	"context"
	"errors"
	"sync"
)

// Event is something that happened to an entity.
type Event struct {
	Name    string
	Payload any
}

// Observer reacts to events it is subscribed to.
type Observer interface {
	Handle(ctx context.Context, event Event) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, event Event) error

// Handle implements Observer.
func (f ObserverFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Publisher dispatches events to subscribed observers synchronously, in
// subscription order.
type Publisher struct {
	mu        sync.RWMutex
	observers map[string][]Observer
}

// NewPublisher creates a publisher with no subscriptions.
func NewPublisher() *Publisher {
	return &Publisher{observers: make(map[string][]Observer)}
}

// Subscribe registers o for events named name.
func (p *Publisher) Subscribe(name string, o Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers[name] = append(p.observers[name], o)
}

// Emit delivers event to every observer of its name. All observers run;
// their failures are returned joined as a KindEmit error.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Name == "" {
		return NewError(KindPublish, "event name is empty")
	}

	p.mu.RLock()
	observers := append([]Observer(nil), p.observers[event.Name]...)
	p.mu.RUnlock()

	var errs []error
	for _, o := range observers {
		if err := o.Handle(ctx, event); err != nil {
			errs = append(errs, HandleError(event.Name, err))
		}
	}
	if len(errs) > 0 {
		joined := errors.Join(errs...)
		return NewError(KindEmit, event.Name).WithCause(joined)
	}
	return nil
}
