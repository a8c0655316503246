package domain

import (
	"errors"
	"fmt"
)

// ErrInputValidation marks rejected user input (empty names, bad dates, bad indexes).
var ErrInputValidation = errors.New("input validation")

// ErrNotFound marks a missing board or card id.
var ErrNotFound = errors.New("not found")

var (
	ErrInvalidID        = fmt.Errorf("%w: invalid id", ErrInputValidation)
	ErrInvalidName      = fmt.Errorf("%w: invalid name", ErrInputValidation)
	ErrInvalidStatus    = fmt.Errorf("%w: invalid status", ErrInputValidation)
	ErrInvalidPriority  = fmt.Errorf("%w: invalid priority", ErrInputValidation)
	ErrInvalidPosition  = fmt.Errorf("%w: invalid position", ErrInputValidation)
	ErrInvalidDate      = fmt.Errorf("%w: invalid date", ErrInputValidation)
	ErrInvalidComment   = fmt.Errorf("%w: invalid comment", ErrInputValidation)
	ErrDuplicateBoardID = fmt.Errorf("%w: duplicate board id", ErrInputValidation)
	ErrDuplicateCardID  = fmt.Errorf("%w: duplicate card id", ErrInputValidation)
	ErrBoardNotFound    = fmt.Errorf("board %w", ErrNotFound)
	ErrCardNotFound     = fmt.Errorf("card %w", ErrNotFound)
)
