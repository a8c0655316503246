package keymap

import (
	"errors"
	"fmt"
)

// ErrKeybindingConflict marks a key bound to more than one action.
var ErrKeybindingConflict = errors.New("keybinding conflict")

// ErrInvalidBinding marks an unknown action or an empty key list.
var ErrInvalidBinding = errors.New("invalid keybinding")

// ConflictError names the key and both actions that claim it.
type ConflictError struct {
	Key    Key
	First  Action
	Second Action
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("keybinding conflict: %q is bound to both %s and %s", e.Key, e.First, e.Second)
}

func (e *ConflictError) Unwrap() error {
	return ErrKeybindingConflict
}
