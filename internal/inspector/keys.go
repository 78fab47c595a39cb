package inspector

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/strata/internal/command"
	"github.com/dshills/strata/internal/timeline"
)

type binding struct {
	name string
	fn   func(*Inspector) error
	quit bool
}

var quitBinding = binding{name: "quit", quit: true}

var runeBindings = map[rune]binding{
	'u': {name: "undo", fn: (*Inspector).undo},
	'r': {name: "redo", fn: (*Inspector).redo},
	'a': {name: "add layer", fn: (*Inspector).addLayer},
	'g': {name: "group", fn: (*Inspector).group},
	'x': {name: "remove", fn: (*Inspector).remove},
	'd': {name: "duplicate", fn: (*Inspector).duplicate},
	'm': {name: "merge down", fn: (*Inspector).mergeDown},
	'n': {name: "normalize", fn: (*Inspector).normalize},
	'c': {name: "clear", fn: (*Inspector).clearLayer},
	'+': {name: "opacity up", fn: (*Inspector).opacityUp},
	'=': {name: "opacity up", fn: (*Inspector).opacityUp},
	'-': {name: "opacity down", fn: (*Inspector).opacityDown},
	'v': {name: "visibility", fn: (*Inspector).toggleVisible},
	'l': {name: "lock", fn: (*Inspector).toggleLocked},
	'k': {name: "select above", fn: (*Inspector).selectAbove},
	'j': {name: "select below", fn: (*Inspector).selectBelow},
	'K': {name: "raise", fn: (*Inspector).raise},
	'J': {name: "lower", fn: (*Inspector).lower},
	'[': {name: "previous frame", fn: (*Inspector).previousFrame},
	']': {name: "next frame", fn: (*Inspector).nextFrame},
	't': {name: "toggle key", fn: (*Inspector).toggleKey},
	'q': quitBinding,
}

var keyBindings = map[tcell.Key]binding{
	tcell.KeyCtrlZ:  runeBindings['u'],
	tcell.KeyCtrlY:  runeBindings['r'],
	tcell.KeyDelete: runeBindings['x'],
	tcell.KeyUp:     runeBindings['k'],
	tcell.KeyDown:   runeBindings['j'],
	tcell.KeyEscape: quitBinding,
	tcell.KeyCtrlC:  quitBinding,
}

func lookup(ev *tcell.EventKey) (binding, bool) {
	if ev.Key() == tcell.KeyRune {
		b, ok := runeBindings[ev.Rune()]
		return b, ok
	}
	b, ok := keyBindings[ev.Key()]
	return b, ok
}

func (i *Inspector) undo() error {
	a, err := i.eng.Undo()
	if err != nil {
		return err
	}
	if a == nil {
		i.status = "Nothing to undo"
		return nil
	}
	i.status = "Undid " + a.Description()
	return nil
}

func (i *Inspector) redo() error {
	a, err := i.eng.Redo()
	if err != nil {
		return err
	}
	if a == nil {
		i.status = "Nothing to redo"
		return nil
	}
	i.status = "Redid " + a.Description()
	return nil
}

func (i *Inspector) addLayer() error {
	_, err := i.eng.AddLayerAbove()
	return err
}

func (i *Inspector) group() error {
	_, err := i.eng.AddGroup(nil)
	return err
}

func (i *Inspector) remove() error { return i.eng.RemoveLayer(nil) }

func (i *Inspector) duplicate() error {
	_, err := i.eng.DuplicateLayer(nil)
	return err
}

func (i *Inspector) mergeDown() error {
	ok, err := i.eng.MergeLayerDown()
	if err == nil && !ok {
		i.status = "Nothing below to merge into"
	}
	return err
}

func (i *Inspector) normalize() error   { return i.eng.ConvertLayerToNormalMode(nil) }
func (i *Inspector) clearLayer() error  { return i.eng.ClearLayer(nil) }
func (i *Inspector) opacityUp() error   { return i.eng.IncreaseOpacity(nil) }
func (i *Inspector) opacityDown() error { return i.eng.DecreaseOpacity(nil) }

func (i *Inspector) toggleVisible() error {
	return i.eng.SetLayerVisibility(nil, !i.eng.Current().Visible())
}

func (i *Inspector) toggleLocked() error {
	return i.eng.SetLayerLocked(nil, !i.eng.Current().Locked())
}

func (i *Inspector) selectAbove() error { return i.eng.SelectLayerAbove() }
func (i *Inspector) selectBelow() error { return i.eng.SelectLayerBelow() }
func (i *Inspector) raise() error       { return i.eng.RaiseLayer(nil) }
func (i *Inspector) lower() error       { return i.eng.LowerLayer(nil) }

// track returns the current animation track.
func (i *Inspector) track() (*timeline.Track, error) {
	tl, err := i.eng.Document().RequireTimeline()
	if err != nil {
		return nil, err
	}
	if tl.Current() == nil {
		return nil, command.ErrNoTrack
	}
	return tl.Current(), nil
}

func (i *Inspector) stepFrame(delta int) error {
	tr, err := i.track()
	if err != nil {
		return err
	}
	idx := tr.Idx() + delta
	if idx < 0 || idx >= tr.Len() {
		return nil
	}
	return i.eng.SelectFrame(idx)
}

func (i *Inspector) previousFrame() error { return i.stepFrame(-1) }
func (i *Inspector) nextFrame() error     { return i.stepFrame(1) }

func (i *Inspector) toggleKey() error {
	tr, err := i.track()
	if err != nil {
		return err
	}
	if tr.Current() == nil {
		return nil
	}
	return i.eng.ToggleKey(tr.Current())
}
