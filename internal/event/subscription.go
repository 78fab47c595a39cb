package event

// SubscriptionState represents the state of a subscription.
type SubscriptionState int32

const (
	// SubscriptionStateActive means the subscription is receiving events.
	SubscriptionStateActive SubscriptionState = iota

	// SubscriptionStatePaused means the subscription is temporarily not receiving events.
	SubscriptionStatePaused

	// SubscriptionStateCancelled means the subscription has been permanently cancelled.
	SubscriptionStateCancelled
)

// String returns a human-readable state name.
func (s SubscriptionState) String() string {
	switch s {
	case SubscriptionStateActive:
		return "active"
	case SubscriptionStatePaused:
		return "paused"
	case SubscriptionStateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Subscription represents a registered observer.
type Subscription interface {
	// ID returns the identifier, unique within the owning list.
	ID() uint64

	// State returns the current subscription state.
	State() SubscriptionState

	// Pause temporarily stops delivery to this subscription.
	Pause()

	// Resume restarts delivery after a pause.
	Resume()

	// Cancel permanently removes the subscription from its list.
	// Cancelling twice is harmless.
	Cancel()
}

// subscription is the internal implementation of Subscription.
type subscription[T any] struct {
	id      uint64
	handler func(T)
	state   SubscriptionState
	list    *List[T]
}

func (s *subscription[T]) ID() uint64 {
	return s.id
}

func (s *subscription[T]) State() SubscriptionState {
	return s.state
}

func (s *subscription[T]) Pause() {
	if s.state == SubscriptionStateActive {
		s.state = SubscriptionStatePaused
	}
}

func (s *subscription[T]) Resume() {
	if s.state == SubscriptionStatePaused {
		s.state = SubscriptionStateActive
	}
}

func (s *subscription[T]) Cancel() {
	if s.state == SubscriptionStateCancelled {
		return
	}
	s.state = SubscriptionStateCancelled
	s.list.remove(s)
}
