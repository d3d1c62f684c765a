package core

import (
	"encoding/base64"
	"errors"
)

// AddressLen is the byte length of an account identity.
const AddressLen = 20

// Address is an opaque 20 byte account identity. All per-user state is
// keyed by it; the string form is standard base64, which is also the
// storage key encoding.
type Address [AddressLen]byte

var emptyAddress Address

// ErrInvalidAddress is returned when an address fails validation.
var ErrInvalidAddress = errors.New("address must be a valid 20 byte identity")

// NewAddress copies b into an Address. b must be exactly 20 bytes.
func NewAddress(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLen {
		return a, ErrInvalidAddress
	}

	copy(a[:], b)
	return a, nil
}

// AddressFromString decodes the base64 string form.
func AddressFromString(s string) (Address, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return emptyAddress, ErrInvalidAddress
	}

	return NewAddress(b)
}

func (a Address) String() string {
	return base64.StdEncoding.EncodeToString(a[:])
}

func (a Address) Bytes() []byte {
	return append([]byte(nil), a[:]...)
}

// IsZero reports whether a is the empty identity.
func (a Address) IsZero() bool {
	return a == emptyAddress
}

// ValidateAddress rejects the zero identity.
func ValidateAddress(a Address) bool {
	return !a.IsZero()
}
