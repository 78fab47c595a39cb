package history

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

// counter is the model mutated by test actions.
type counter struct {
	value int
	log   []string
}

// addAction adds n to a counter.
type addAction struct {
	c         *counter
	n         int
	automatic bool
	failRedo  bool
	failUndo  bool
}

func (a *addAction) Redo() error {
	if a.failRedo {
		return errors.New("redo failed")
	}
	a.c.value += a.n
	a.c.log = append(a.c.log, fmt.Sprintf("redo %d", a.n))
	return nil
}

func (a *addAction) Undo() error {
	if a.failUndo {
		return errors.New("undo failed")
	}
	a.c.value -= a.n
	a.c.log = append(a.c.log, fmt.Sprintf("undo %d", a.n))
	return nil
}

func (a *addAction) Description() string { return fmt.Sprintf("Add %d", a.n) }
func (a *addAction) Automatic() bool     { return a.automatic }

// setAction sets a counter and supports amend.
type setAction struct {
	c        *counter
	value    int
	previous int
}

func (a *setAction) Redo() error {
	a.previous = a.c.value
	a.c.value = a.value
	return nil
}

func (a *setAction) Undo() error {
	a.c.value = a.previous
	return nil
}

func (a *setAction) Amend(patch any) error {
	v, ok := patch.(int)
	if !ok {
		return ErrPatchMismatch
	}
	a.value = v
	a.c.value = v
	return nil
}

func (a *setAction) Description() string { return fmt.Sprintf("Set %d", a.value) }
func (a *setAction) Automatic() bool     { return false }

func add(c *counter, n int) *addAction { return &addAction{c: c, n: n} }

// Do / Undo / Redo Tests

func TestStackDoUndoRedo(t *testing.T) {
	c := &counter{}
	s := NewStack()

	if err := s.Do(add(c, 1)); err != nil {
		t.Fatal(err)
	}
	if err := s.Do(add(c, 2)); err != nil {
		t.Fatal(err)
	}
	if c.value != 3 {
		t.Fatalf("value = %d, want 3", c.value)
	}

	a, err := s.Undo()
	if err != nil {
		t.Fatal(err)
	}
	if a.Description() != "Add 2" || c.value != 1 {
		t.Errorf("Undo() = %q, value %d", a.Description(), c.value)
	}
	a, err = s.Redo()
	if err != nil {
		t.Fatal(err)
	}
	if a.Description() != "Add 2" || c.value != 3 {
		t.Errorf("Redo() = %q, value %d", a.Description(), c.value)
	}
	if s.UndoCount() != 2 || s.RedoCount() != 0 {
		t.Errorf("counts = %d/%d, want 2/0", s.UndoCount(), s.RedoCount())
	}
}

func TestStackEmptyUndoRedoIsNoop(t *testing.T) {
	s := NewStack()
	hooks := 0
	s.OnBeforeAction(func(*Stack) { hooks++ })

	a, err := s.Undo()
	if a != nil || err != nil {
		t.Errorf("Undo() on empty = %v, %v", a, err)
	}
	a, err = s.Redo()
	if a != nil || err != nil {
		t.Errorf("Redo() on empty = %v, %v", a, err)
	}
	if hooks != 0 {
		t.Errorf("hooks ran %d times for no-ops", hooks)
	}
}

func TestStackDoDiscardsFuture(t *testing.T) {
	c := &counter{}
	s := NewStack()
	s.Do(add(c, 1))
	s.Undo()
	if !s.CanRedo() {
		t.Fatal("redo should be available after undo")
	}
	s.Do(add(c, 10))
	if s.CanRedo() {
		t.Fatal("do should discard the future")
	}
	a, err := s.Redo()
	if a != nil || err != nil {
		t.Errorf("Redo() after do = %v, %v", a, err)
	}
	if c.value != 10 {
		t.Errorf("value = %d, want 10", c.value)
	}
}

func TestStackFailedDoKeepsFuture(t *testing.T) {
	c := &counter{}
	s := NewStack()
	s.Do(add(c, 1))
	s.Undo()

	err := s.Do(&addAction{c: c, n: 5, failRedo: true})
	if err == nil {
		t.Fatal("expected error")
	}
	if s.UndoCount() != 0 || s.RedoCount() != 1 {
		t.Errorf("counts = %d/%d, want 0/1", s.UndoCount(), s.RedoCount())
	}
}

func TestStackFailedUndoKeepsEntry(t *testing.T) {
	c := &counter{}
	s := NewStack()
	s.Do(&addAction{c: c, n: 1, failUndo: true})
	if _, err := s.Undo(); err == nil {
		t.Fatal("expected error")
	}
	if s.UndoCount() != 1 || s.RedoCount() != 0 {
		t.Errorf("counts = %d/%d, want 1/0", s.UndoCount(), s.RedoCount())
	}
}

func TestStackNilAction(t *testing.T) {
	s := NewStack()
	if err := s.Do(nil); !errors.Is(err, ErrNilAction) {
		t.Errorf("Do(nil) error = %v", err)
	}
}

// reentrant calls Do on the stack from inside Redo.
type reentrant struct {
	s   *Stack
	err error
}

func (r *reentrant) Redo() error {
	r.err = r.s.Do(add(&counter{}, 1))
	return nil
}
func (r *reentrant) Undo() error {
	_, r.err = r.s.Undo()
	return nil
}
func (r *reentrant) Description() string { return "Reentrant" }
func (r *reentrant) Automatic() bool     { return false }

func TestStackRejectsReentrantCalls(t *testing.T) {
	s := NewStack()
	r := &reentrant{s: s}
	if err := s.Do(r); err != nil {
		t.Fatal(err)
	}
	if !errors.Is(r.err, ErrReentrant) {
		t.Errorf("nested Do error = %v, want ErrReentrant", r.err)
	}
	if s.UndoCount() != 1 {
		t.Errorf("UndoCount() = %d, want 1", s.UndoCount())
	}
	if _, err := s.Undo(); err != nil {
		t.Fatal(err)
	}
	if !errors.Is(r.err, ErrReentrant) {
		t.Errorf("nested Undo error = %v, want ErrReentrant", r.err)
	}
}

// Hook and Observer Tests

func TestStackHooksRunBeforeAction(t *testing.T) {
	c := &counter{}
	s := NewStack()
	var order []string
	s.OnBeforeAction(func(*Stack) { order = append(order, fmt.Sprintf("hook@%d", c.value)) })
	s.Observe(func(*Stack) { order = append(order, fmt.Sprintf("observe@%d", c.value)) })

	s.Do(add(c, 1))
	s.Undo()
	s.Redo()

	want := []string{"hook@0", "observe@1", "hook@1", "observe@0", "hook@0", "observe@1"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestStackHookMayFlushWithDo(t *testing.T) {
	c := &counter{}
	s := NewStack()
	pending := true
	s.OnBeforeAction(func(st *Stack) {
		if pending {
			pending = false
			if err := st.Do(add(c, 100)); err != nil {
				t.Errorf("flush Do failed: %v", err)
			}
		}
	})
	if err := s.Do(add(c, 1)); err != nil {
		t.Fatal(err)
	}
	if s.UndoCount() != 2 || c.value != 101 {
		t.Errorf("count %d value %d, want 2 and 101", s.UndoCount(), c.value)
	}
	if s.History()[0].Description() != "Add 100" {
		t.Errorf("flushed action should be recorded first")
	}
}

func TestStackObserverCancel(t *testing.T) {
	c := &counter{}
	s := NewStack()
	calls := 0
	sub := s.Observe(func(*Stack) { calls++ })
	s.Do(add(c, 1))
	sub.Cancel()
	s.Do(add(c, 1))
	s.Clear()
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestStackClear(t *testing.T) {
	c := &counter{}
	s := NewStack()
	s.Do(add(c, 1))
	s.Do(add(c, 2))
	s.Undo()
	notified := false
	s.Observe(func(*Stack) { notified = true })
	s.Clear()
	if s.CanUndo() || s.CanRedo() {
		t.Error("Clear should empty both sequences")
	}
	if !notified {
		t.Error("Clear should notify observers")
	}
	if c.value != 1 {
		t.Errorf("Clear must not touch the model, value = %d", c.value)
	}
}

// Amend Tests

func TestStackUpdateLast(t *testing.T) {
	c := &counter{}
	s := NewStack()
	s.Do(&setAction{c: c, value: 5})

	notified := 0
	s.Observe(func(*Stack) { notified++ })
	a, err := s.UpdateLast(8)
	if err != nil {
		t.Fatal(err)
	}
	if a.Description() != "Set 8" || c.value != 8 || s.UndoCount() != 1 {
		t.Errorf("after amend: %q value %d count %d", a.Description(), c.value, s.UndoCount())
	}
	if notified != 1 {
		t.Errorf("observers notified %d times, want 1", notified)
	}

	s.Undo()
	if c.value != 0 {
		t.Errorf("undo after amend: value = %d, want 0", c.value)
	}
	s.Redo()
	if c.value != 8 {
		t.Errorf("redo after amend: value = %d, want 8", c.value)
	}

	if _, err := s.UpdateLast("eight"); !errors.Is(err, ErrPatchMismatch) {
		t.Errorf("wrong patch type error = %v", err)
	}
}

func TestStackUpdateLastNotAmendable(t *testing.T) {
	s := NewStack()
	if a, err := s.UpdateLast(1); a != nil || err != nil {
		t.Errorf("UpdateLast on empty = %v, %v", a, err)
	}
	s.Do(add(&counter{}, 1))
	if _, err := s.UpdateLast(1); !errors.Is(err, ErrNotAmendable) {
		t.Errorf("error = %v, want ErrNotAmendable", err)
	}
}

// Trimming Tests

func TestStackTrimsToMaxSignificant(t *testing.T) {
	c := &counter{}
	s := NewStack()
	for i := 1; i <= 40; i++ {
		s.Do(add(c, i))
	}
	h := s.History()
	if len(h) != 30 {
		t.Fatalf("len(history) = %d, want 30", len(h))
	}
	if h[0].Description() != "Add 11" || h[29].Description() != "Add 40" {
		t.Errorf("kept %q..%q, want Add 11..Add 40", h[0].Description(), h[29].Description())
	}
}

func TestStackTrimKeepsInterleavedAutomatic(t *testing.T) {
	c := &counter{}
	s := NewStack()
	auto := func(n int) *addAction { return &addAction{c: c, n: n, automatic: true} }

	// Oldest prefix: one significant and one automatic action, both to be dropped.
	s.Do(add(c, 1000))
	s.Do(auto(-1))
	for i := 1; i <= 30; i++ {
		s.Do(add(c, i))
		s.Do(auto(-i - 1))
	}

	h := s.History()
	if len(h) != 60 {
		t.Fatalf("len(history) = %d, want 60", len(h))
	}
	if h[0].Description() != "Add 1" {
		t.Errorf("oldest kept = %q, want Add 1", h[0].Description())
	}
	significant := 0
	for _, a := range h {
		if !a.Automatic() {
			significant++
		}
	}
	if significant != 30 {
		t.Errorf("significant = %d, want 30", significant)
	}
}

func TestStackNoTrimBelowCap(t *testing.T) {
	c := &counter{}
	s := NewStack()
	for i := 0; i < 10; i++ {
		s.Do(&addAction{c: c, n: i, automatic: true})
		s.Do(add(c, i))
	}
	if s.UndoCount() != 20 {
		t.Errorf("UndoCount() = %d, want 20", s.UndoCount())
	}
}

func TestStackSetMaxSignificant(t *testing.T) {
	c := &counter{}
	s := NewStack(WithMaxSignificant(5))
	for i := 0; i < 8; i++ {
		s.Do(add(c, i))
	}
	if s.UndoCount() != 5 {
		t.Fatalf("UndoCount() = %d, want 5", s.UndoCount())
	}
	s.SetMaxSignificant(2)
	if s.UndoCount() != 2 || s.MaxSignificant() != 2 {
		t.Errorf("after SetMaxSignificant(2): count %d cap %d", s.UndoCount(), s.MaxSignificant())
	}
}

// Compound Tests

func TestCompoundReverseOrder(t *testing.T) {
	c := &counter{}
	comp := NewCompound("Batch", add(c, 1), add(c, 2), add(c, 3))
	s := NewStack()
	if err := s.Do(comp); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Undo(); err != nil {
		t.Fatal(err)
	}
	want := []string{"redo 1", "redo 2", "redo 3", "undo 3", "undo 2", "undo 1"}
	if !reflect.DeepEqual(c.log, want) {
		t.Errorf("log = %v, want %v", c.log, want)
	}
	if comp.Len() != 3 || comp.Description() != "Batch" {
		t.Errorf("Len %d Description %q", comp.Len(), comp.Description())
	}
}

func TestCompoundRollsBackOnFailure(t *testing.T) {
	c := &counter{}
	comp := NewCompound("Batch", add(c, 1), add(c, 2), &addAction{c: c, n: 3, failRedo: true})
	s := NewStack()
	if err := s.Do(comp); err == nil {
		t.Fatal("expected error")
	}
	if c.value != 0 {
		t.Errorf("value = %d, want 0 after rollback", c.value)
	}
	if s.CanUndo() {
		t.Error("failed compound must not be recorded")
	}
}
