package domain

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ID is a 128-bit identifier stored as two halves so it can be used as a composite key.
type ID struct {
	Hi uint64
	Lo uint64
}

// NewID returns a random ID.
func NewID() ID {
	return IDFromUUID(uuid.New())
}

// IDFromUUID splits u into its high and low halves.
func IDFromUUID(u uuid.UUID) ID {
	return ID{
		Hi: binary.BigEndian.Uint64(u[:8]),
		Lo: binary.BigEndian.Uint64(u[8:]),
	}
}

// ParseID accepts the canonical UUID text form produced by String.
func ParseID(raw string) (ID, error) {
	u, err := uuid.Parse(raw)
	if err != nil {
		return ID{}, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return IDFromUUID(u), nil
}

// IsZero reports whether id is unset.
func (id ID) IsZero() bool {
	return id.Hi == 0 && id.Lo == 0
}

// UUID joins the halves back into a UUID.
func (id ID) UUID() uuid.UUID {
	var u uuid.UUID
	binary.BigEndian.PutUint64(u[:8], id.Hi)
	binary.BigEndian.PutUint64(u[8:], id.Lo)
	return u
}

// String renders id in UUID form.
func (id ID) String() string {
	return id.UUID().String()
}

// MarshalJSON encodes the id as a two-element array [hi, lo].
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]uint64{id.Hi, id.Lo})
}

// UnmarshalJSON accepts the [hi, lo] pair form.
func (id *ID) UnmarshalJSON(data []byte) error {
	var pair [2]uint64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	id.Hi, id.Lo = pair[0], pair[1]
	return nil
}
