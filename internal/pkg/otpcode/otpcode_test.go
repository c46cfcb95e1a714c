package otpcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNumeric(t *testing.T) {
	tests := []struct {
		name    string
		length  int
		wantErr error
	}{
		{name: "too short", length: 3, wantErr: ErrInvalidLength},
		{name: "too long", length: 11, wantErr: ErrInvalidLength},
		{name: "six digits", length: 6},
		{name: "four digits", length: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewNumeric(tt.length)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.length, g.Length())
		})
	}
}

func TestNumericGenerate(t *testing.T) {
	g, err := NewNumeric(6)
	require.NoError(t, err)

	seen := map[string]struct{}{}
	for range 50 {
		code, err := g.Generate()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', "code %q has non-digit", code)
		}
		seen[code] = struct{}{}
	}

	// 50 draws from a million values should essentially never all collide.
	assert.Greater(t, len(seen), 1)
}
