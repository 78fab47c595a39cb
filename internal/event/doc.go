// Package event provides typed observer lists with explicit
// registration handles.
//
// A List[T] is owned by whichever component produces the notifications
// (the document, the command stack). Collaborators call Subscribe and keep
// the returned Subscription for as long as they want callbacks, then call
// Cancel when they go away:
//
//	sub := doc.Changes().Subscribe(func(ev document.Event) {
//	    view.refresh(ev)
//	})
//	defer sub.Cancel()
//
// Delivery is synchronous and in registration order. A subscription that
// is cancelled or paused during a notification pass is skipped for the
// remainder of that pass; subscriptions added during a pass are first
// called on the next one.
//
// Lists are not safe for concurrent use. They are meant for a single
// UI-driven goroutine, like the rest of the document model.
package event
