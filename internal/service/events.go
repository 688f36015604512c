package service

import (
	"strings"
	"sync"
)

const (
	EventCreated   = "created"
	EventCanceled  = "canceled"
	EventTriggered = "triggered"
)

type OrderEvent struct {
	Kind        string `json:"kind"`
	OrderID     string `json:"order_id"`
	UserAddress string `json:"user_address"`
	Symbol      string `json:"symbol"`
	Status      string `json:"status"`
}

// OrderEvents fans limit-order changes out to in-process subscribers. Delivery is
// best effort: a subscriber whose buffer is full misses the event.
type OrderEvents struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]subscription
}

type subscription struct {
	user string
	ch   chan OrderEvent
}

func NewOrderEvents() *OrderEvents {
	return &OrderEvents{subs: map[int]subscription{}}
}

// Subscribe returns a channel of events for user ("" receives all) and a cancel
// func that closes it.
func (e *OrderEvents) Subscribe(user string, buffer int) (<-chan OrderEvent, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan OrderEvent, buffer)
	if e == nil {
		close(ch)
		return ch, func() {}
	}
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.subs[id] = subscription{user: strings.TrimSpace(user), ch: ch}
	e.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.subs, id)
			e.mu.Unlock()
			close(ch)
		})
	}
}

func (e *OrderEvents) Publish(ev OrderEvent) {
	if e == nil {
		return
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, s := range e.subs {
		if s.user != "" && s.user != ev.UserAddress {
			continue
		}
		select {
		case s.ch <- ev:
		default:
		}
	}
}

func (e *OrderEvents) Subscribers() int {
	if e == nil {
		return 0
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.subs)
}
