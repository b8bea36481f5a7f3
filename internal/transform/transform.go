// Package transform applies the field normalizers across each entity
// collection, de-duplicates, computes derived fields, and reports per-stage
// counters. Each transform returns its own Stats value; the orchestrator
// merges them into the run report (no shared mutable counters).
package transform

import (
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"
)

// Stats are the counters a single transform stage produces.
type Stats struct {
	Processed         int
	DuplicatesRemoved int
	MissingHandled    int
}

// Add merges other into s.
func (s *Stats) Add(other Stats) {
	s.Processed += other.Processed
	s.DuplicatesRemoved += other.DuplicatesRemoved
	s.MissingHandled += other.MissingHandled
}

// rowKey hashes the joined fields of a record so exact-row duplicates can be
// detected with a set membership test instead of a full comparison. Fields
// are separated with \x1f to keep ("ab","c") distinct from ("a","bc").
func rowKey(fields ...string) uint64 {
	return xxh3.HashString(strings.Join(fields, "\x1f"))
}

// fmtID renders an optional id for hashing; absent ids hash distinctly from
// any real value.
func fmtID(id *int64) string {
	if id == nil {
		return "\x00"
	}
	return strconv.FormatInt(*id, 10)
}
