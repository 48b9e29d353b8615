package sheet

import (
	"crypto/rand"
	"encoding/base32"
	"strings"
)

// newRandomID returns prefix-<suffix> where suffix is 8 chars of base32
// (lowercase, no padding). 8 chars base32 ~= 40 bits of space, plenty for
// axis ids scoped to one sheet.
func newRandomID(prefix string) string {
	var b [5]byte // 40 bits -> 8 base32 chars
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failing means the platform is broken; an all-zero
		// suffix still yields a usable (if collision-prone) id.
		return prefix + "-00000000"
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	return prefix + "-" + strings.ToLower(enc.EncodeToString(b[:]))
}

// NewTimeID allocates a fresh time-slot id ("r-" after the row axis that
// backs the timeline).
func NewTimeID() string { return newRandomID("r") }

// NewLaneID allocates a fresh lane id ("c-" after the column axis that
// backs the lanes).
func NewLaneID() string { return newRandomID("c") }
