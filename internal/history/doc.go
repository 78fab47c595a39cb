// Package history provides the undo/redo command stack.
//
// Every change to a document is an Action with a Redo that applies it and
// an Undo that reverses it exactly. A Stack owns two sequences: history
// (applied, most recent last) and future (undone, most recently undone
// last). Do discards the future, so history is linear.
//
// Actions may be flagged automatic when they ride along with another
// change, such as a selection that follows a merge. Trimming keeps the
// most recent MaxSignificant non-automatic actions together with every
// automatic action newer than the oldest of them, and drops the rest.
//
// Actions that represent a continuously adjustable value implement
// Amender, letting the caller replace the value held by the top entry
// through UpdateLast instead of growing the stack.
//
// A Stack is driven from a single goroutine. Calling Do, Undo or Redo
// from inside a running action fails with ErrReentrant; composite actions
// sequence their own children directly instead.
package history
