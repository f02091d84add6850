package clockstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestBCDRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.IntRange(0, 99).Draw(t, "v")
		assert.Equal(t, v, bcdDecode(bcdEncode(v)))
	})
}

func TestBCDEncodeKnownValues(t *testing.T) {
	assert.Equal(t, byte(0x00), bcdEncode(0))
	assert.Equal(t, byte(0x42), bcdEncode(42))
	assert.Equal(t, byte(0x99), bcdEncode(99))
}
