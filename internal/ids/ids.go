// Package ids issues the record identifiers of the journal.
package ids

import (
	"crypto/rand"
	"github.com/oklog/ulid/v2"
	"sync"
	"time"
)

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// New returns a ULID. IDs issued by one process sort in issue order.
func New() string {
	return At(time.Now())
}

// At returns a ULID whose timestamp part is t, so imported records sort by when
// they were traded rather than when they were imported.
func At(t time.Time) string {
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t.UTC()), entropy).String()
}

// Valid reports whether s parses as a ULID.
func Valid(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
