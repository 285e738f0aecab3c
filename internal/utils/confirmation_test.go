package utils

import (
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solmara/resort-reservation/internal/model"
)

// zeroReader always yields zero bytes, pinning the random suffix so the
// format can be asserted exactly.
type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func TestGenerateFormat(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	g := NewCodeGeneratorWith(func() time.Time { return at }, zeroReader{})

	code, err := g.Generate("eve")
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^EVE-[0-9a-z]+-[0-9a-z]{4}$`), code)
	// zero random bytes map to the first alphabet character
	ts := strconv.FormatInt(at.UnixMilli(), 36)
	assert.Equal(t, "EVE-"+ts+"-0000", code)
}

// A ticking clock guarantees distinct timestamp segments, so codes must
// be pairwise distinct even with a degenerate random source.
func TestGenerateUniqueness(t *testing.T) {
	const n = 100_000

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var calls int64
	clock := func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Millisecond)
	}
	g := NewCodeGeneratorWith(clock, zeroReader{})

	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		code, err := g.Generate("RES")
		require.NoError(t, err)
		_, dup := seen[code]
		require.False(t, dup, "duplicate code %q at iteration %d", code, i)
		seen[code] = struct{}{}
	}
}

func TestKindPrefix(t *testing.T) {
	tests := []struct {
		kind string
		want string
	}{
		{model.KindEvent, "EVE"},
		{model.KindLodging, "LOD"},
		{model.KindRestaurant, "RES"},
		{model.KindConcierge, "CON"},
		{model.KindFleet, "FLT"},
		{"TICKET", "TKT"},
		{"SPA", "RSV"},
		{"", "RSV"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KindPrefix(tt.kind), "kind=%q", tt.kind)
	}
}
