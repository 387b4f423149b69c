package pickupcode

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

func TestGenerator_Generate(t *testing.T) {
	gen := NewGenerator(DefaultLength)

	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		code, err := gen.Generate()
		require.NoError(t, err)
		assert.Regexp(t, codePattern, code)
		assert.True(t, Valid(code))
		seen[code] = struct{}{}
	}
	// 36^6 possible codes, a handful of collisions in 200 draws would be suspicious.
	assert.Greater(t, len(seen), 190)
}

func TestNewGenerator_DefaultsLength(t *testing.T) {
	code, err := NewGenerator(0).Generate()
	require.NoError(t, err)
	assert.Len(t, code, DefaultLength)
}

func TestValid(t *testing.T) {
	testCases := []struct {
		code string
		want bool
	}{
		{"AB12CD", true},
		{"000000", true},
		{"ab12cd", false},
		{"AB12C", false},
		{"AB12CDE", false},
		{"AB-2CD", false},
		{"", false},
	}
	for _, tc := range testCases {
		t.Run(tc.code, func(t *testing.T) {
			assert.Equal(t, tc.want, Valid(tc.code))
		})
	}
}
