package history

import "fmt"

// Action is an undoable change. Redo and Undo are called strictly
// alternately on one instance, starting with Redo.
type Action interface {
	// Redo applies (or re-applies) the change.
	Redo() error

	// Undo reverses the most recent Redo.
	Undo() error

	// Description returns the human-readable label, e.g. "Merge Layers".
	Description() string

	// Automatic reports whether the action is a side effect that does not
	// count toward the history cap.
	Automatic() bool
}

// Amender is implemented by actions that can absorb a newer value in
// place. Amend applies the patch to the model immediately and updates
// what Redo will apply and what Description reports.
type Amender interface {
	Amend(patch any) error
}

// Compound groups actions into one history entry. Children are applied
// in order and reversed in the opposite order. If a child fails, the
// children already applied are reversed before the error is returned,
// leaving the model as it was.
type Compound struct {
	label     string
	actions   []Action
	automatic bool
}

// NewCompound creates a compound action with the given label.
func NewCompound(label string, actions ...Action) *Compound {
	return &Compound{label: label, actions: actions}
}

// Description implements Action.
func (c *Compound) Description() string { return c.label }

// Automatic implements Action. A compound is automatic only if marked so.
func (c *Compound) Automatic() bool { return c.automatic }

// SetAutomatic marks the compound as a side effect.
func (c *Compound) SetAutomatic(v bool) { c.automatic = v }

// Len returns the number of children.
func (c *Compound) Len() int { return len(c.actions) }

// Redo applies all children in order.
func (c *Compound) Redo() error {
	for i, a := range c.actions {
		if err := a.Redo(); err != nil {
			for j := i - 1; j >= 0; j-- {
				if uerr := c.actions[j].Undo(); uerr != nil {
					return fmt.Errorf("rollback compound '%s' step %d: %w (after: %v)", c.label, j, uerr, err)
				}
			}
			return fmt.Errorf("compound '%s' step %d: %w", c.label, i, err)
		}
	}
	return nil
}

// Undo reverses all children in reverse order.
func (c *Compound) Undo() error {
	for i := len(c.actions) - 1; i >= 0; i-- {
		if err := c.actions[i].Undo(); err != nil {
			return fmt.Errorf("undo compound '%s' step %d: %w", c.label, i, err)
		}
	}
	return nil
}
