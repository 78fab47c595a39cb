package event

// List is an ordered set of observers for values of type T.
// The zero value is ready to use.
type List[T any] struct {
	nextID uint64
	subs   []*subscription[T]
}

// Subscribe registers fn and returns its handle. It panics on a nil
// handler, which is always a programming error.
func (l *List[T]) Subscribe(fn func(T)) Subscription {
	if fn == nil {
		panic(ErrNilHandler)
	}
	l.nextID++
	s := &subscription[T]{id: l.nextID, handler: fn, list: l}
	l.subs = append(l.subs, s)
	return s
}

// Notify calls every active observer with v in registration order.
func (l *List[T]) Notify(v T) {
	if len(l.subs) == 0 {
		return
	}
	subs := make([]*subscription[T], len(l.subs))
	copy(subs, l.subs)
	for _, s := range subs {
		if s.state == SubscriptionStateActive {
			s.handler(v)
		}
	}
}

// Len returns the number of registered (active or paused) observers.
func (l *List[T]) Len() int {
	return len(l.subs)
}

// Clear cancels every subscription.
func (l *List[T]) Clear() {
	for _, s := range l.subs {
		s.state = SubscriptionStateCancelled
	}
	l.subs = nil
}

func (l *List[T]) remove(s *subscription[T]) {
	for i, c := range l.subs {
		if c == s {
			l.subs = append(l.subs[:i:i], l.subs[i+1:]...)
			return
		}
	}
}
