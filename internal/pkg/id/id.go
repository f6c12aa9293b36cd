package id

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// New returns a fresh ULID for use as a record id. ULIDs sort by creation
// time, so scans over id-keyed tables come back in rough insertion order.
func New() string {
	return At(time.Now())
}

// At returns a ULID stamped with the given time. Split out so tests can
// mint ids at known instants.
func At(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}
