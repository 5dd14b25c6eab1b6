// Package ident generates identifiers for workspace entities.
package ident

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// New returns a random identifier for an entity.
func New() string {
	return uuid.New().String()
}

// FromName returns a stable identifier derived from name, so the same input
// always yields the same id.
func FromName(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(strings.ToLower(strings.TrimSpace(name)))).String()
}

// NextSeq advances a persisted sequence counter and returns the new value
// as a task id. The counter only moves forward, so ids are never reused
// after a delete.
func NextSeq(counter *int) string {
	*counter++
	return strconv.Itoa(*counter)
}

// SeqFloor returns the highest numeric id in ids. It repairs a counter that
// was persisted by an older build without one.
func SeqFloor(ids []string) int {
	max := 0
	for _, id := range ids {
		n, err := strconv.Atoi(id)
		if err == nil && n > max {
			max = n
		}
	}
	return max
}
