package fixpoint

import (
	"testing"

	"github.com/bmizerany/assert"
	"github.com/holiman/uint256"
)

func TestMulDivFloors(t *testing.T) {
	got := MulDiv(uint256.NewInt(10), uint256.NewInt(10), uint256.NewInt(3))
	assert.Equal(t, "33", got.Dec())

	got = MulDiv(uint256.NewInt(7), uint256.NewInt(0), uint256.NewInt(3))
	assert.Equal(t, "0", got.Dec())
}

func TestMin(t *testing.T) {
	a := uint256.NewInt(5)
	b := uint256.NewInt(9)

	assert.Equal(t, "5", Min(a, b).Dec())
	assert.Equal(t, "5", Min(b, a).Dec())

	// fresh value, not an alias
	m := Min(a, b)
	m.AddUint64(m, 1)
	assert.Equal(t, "5", a.Dec())
}

func TestSub(t *testing.T) {
	got, ok := Sub(uint256.NewInt(9), uint256.NewInt(5))
	assert.Equal(t, true, ok)
	assert.Equal(t, "4", got.Dec())

	_, ok = Sub(uint256.NewInt(5), uint256.NewInt(9))
	assert.Equal(t, false, ok)

	got, ok = Sub(uint256.NewInt(5), uint256.NewInt(5))
	assert.Equal(t, true, ok)
	assert.Equal(t, "0", got.Dec())
}
