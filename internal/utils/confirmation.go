package utils

import (
	"crypto/rand"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/solmara/resort-reservation/internal/model"
)

// base36 digits used for the random suffix of a confirmation number.
const codeAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// randomSuffixLen is the number of base36 characters appended after the
// timestamp segment.
const randomSuffixLen = 4

// CodeGenerator produces confirmation numbers of the form
// {PREFIX}-{TIMESTAMP_BASE36}-{RANDOM_BASE36}, e.g. "EVE-m9qm3k1c-7xa2".
// Timestamp plus randomness makes collisions astronomically unlikely but
// not impossible, so the persistence layer keeps a unique key on the
// column and the booking ledger regenerates once on a violation.
//
// The clock and the random source are injectable so that tests can
// exercise the format and uniqueness deterministically.
type CodeGenerator struct {
	now  func() time.Time
	rand io.Reader
}

// NewCodeGenerator returns a generator backed by the wall clock and
// crypto/rand.
func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{now: time.Now, rand: rand.Reader}
}

// NewCodeGeneratorWith returns a generator with an explicit clock and
// random source. Either argument may be nil to keep the default.
func NewCodeGeneratorWith(now func() time.Time, r io.Reader) *CodeGenerator {
	g := NewCodeGenerator()
	if now != nil {
		g.now = now
	}
	if r != nil {
		g.rand = r
	}
	return g
}

// Generate returns a fresh confirmation number for the given prefix.
// The prefix is upper-cased; the timestamp segment encodes the current
// instant at millisecond precision in base 36.
func (g *CodeGenerator) Generate(prefix string) (string, error) {
	ts := strconv.FormatInt(g.now().UTC().UnixMilli(), 36)
	buf := make([]byte, randomSuffixLen)
	if _, err := io.ReadFull(g.rand, buf); err != nil {
		return "", err
	}
	suffix := make([]byte, randomSuffixLen)
	for i, b := range buf {
		suffix[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return fmt.Sprintf("%s-%s-%s", strings.ToUpper(prefix), ts, suffix), nil
}

// KindPrefix maps a venue kind to the three-letter confirmation prefix
// stamped on its reservations. Unknown kinds fall back to the generic
// RSV prefix. TKT is reserved for support tickets raised outside the
// booking flow.
func KindPrefix(kind string) string {
	switch kind {
	case model.KindEvent:
		return "EVE"
	case model.KindLodging:
		return "LOD"
	case model.KindRestaurant:
		return "RES"
	case model.KindConcierge:
		return "CON"
	case model.KindFleet:
		return "FLT"
	case "TICKET":
		return "TKT"
	default:
		return "RSV"
	}
}
