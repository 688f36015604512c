package service

import "testing"

func TestOrderEvents_FilterAndUnsubscribe(t *testing.T) {
	e := NewOrderEvents()
	mine, cancelMine := e.Subscribe("abc", 2)
	all, cancelAll := e.Subscribe("", 2)

	e.Publish(OrderEvent{Kind: EventCreated, UserAddress: "abc"})
	e.Publish(OrderEvent{Kind: EventCreated, UserAddress: "other"})

	if got := len(mine); got != 1 {
		t.Fatalf("mine=%d want=1", got)
	}
	if got := len(all); got != 2 {
		t.Fatalf("all=%d want=2", got)
	}

	// a full buffer drops instead of blocking
	e.Publish(OrderEvent{Kind: EventCanceled, UserAddress: "abc"})
	e.Publish(OrderEvent{Kind: EventCanceled, UserAddress: "abc"})

	cancelMine()
	cancelMine()
	cancelAll()
	if n := e.Subscribers(); n != 0 {
		t.Fatalf("subscribers=%d want=0", n)
	}
	for range mine {
	}
}
