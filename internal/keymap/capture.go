package keymap

import (
	"fmt"
	"slices"
)

// Capture buffers the keys of one rebind until it is committed or cancelled.
type Capture struct {
	action Action
	keys   []Key
	active bool
}

// Begin starts capturing keys for a.
func (c *Capture) Begin(a Action) {
	c.action = a
	c.keys = nil
	c.active = true
}

// Active reports whether a rebind is waiting for keys.
func (c *Capture) Active() bool {
	return c.active
}

// Action returns the action being rebound.
func (c *Capture) Action() Action {
	return c.action
}

// Keys returns the buffered keys.
func (c *Capture) Keys() []Key {
	return slices.Clone(c.keys)
}

// Add buffers k, ignoring repeats.
func (c *Capture) Add(k Key) {
	if !c.active {
		return
	}
	k = NormalizeKey(string(k))
	if k == "" || slices.Contains(c.keys, k) {
		return
	}
	c.keys = append(c.keys, k)
}

// Commit validates the buffered keys against b and ends the capture. On error
// the caller keeps b unchanged.
func (c *Capture) Commit(b Bindings) (Bindings, error) {
	if !c.active {
		return nil, fmt.Errorf("%w: no capture in progress", ErrInvalidBinding)
	}
	action, keys := c.action, c.keys
	c.Cancel()
	return b.Rebind(action, keys)
}

// Cancel discards the buffer.
func (c *Capture) Cancel() {
	c.keys = nil
	c.active = false
}
