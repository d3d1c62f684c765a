package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressRoundTrip(t *testing.T) {
	raw := make([]byte, AddressLen)
	for i := range raw {
		raw[i] = byte(i + 1)
	}

	addr, err := NewAddress(raw)
	require.NoError(t, err)

	decoded, err := AddressFromString(addr.String())
	require.NoError(t, err)
	assert.Equal(t, addr, decoded)
}

func TestAddressValidation(t *testing.T) {
	_, err := NewAddress([]byte{1, 2, 3})
	assert.Equal(t, ErrInvalidAddress, err)

	_, err = AddressFromString("too short")
	assert.Equal(t, ErrInvalidAddress, err)

	assert.False(t, ValidateAddress(Address{}))
	assert.True(t, ValidateAddress(Address{0x01}))
}
