package game

// Listener receives one notification from an EventSource.
type Listener[T any] func(T)

// EventSource delivers notifications synchronously, in registration order.
// It is not safe for concurrent use; the owner of the source serialises
// access.
type EventSource[T any] struct {
	listeners []Listener[T]
}

// Subscribe appends fn to the delivery list.
func (s *EventSource[T]) Subscribe(fn Listener[T]) {
	s.listeners = append(s.listeners, fn)
}

// SubscribeFirst puts fn ahead of every current listener. A later
// SubscribeFirst call takes the front spot from it.
func (s *EventSource[T]) SubscribeFirst(fn Listener[T]) {
	s.listeners = append([]Listener[T]{fn}, s.listeners...)
}

// Notify runs every listener to completion before returning.
func (s *EventSource[T]) Notify(v T) {
	for _, fn := range s.listeners {
		fn(v)
	}
}

func (s *EventSource[T]) Len() int {
	return len(s.listeners)
}
