package otp

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/go-movie-api/internal/domain"
)

// DefaultTTL is how long an issued code stays valid.
const DefaultTTL = 5 * time.Minute

const codeDigits = 1000000 // codes are "000000".."999999"

type challenge struct {
	code      string
	issuedAt  time.Time
	expiresAt time.Time
}

// Registry holds pending password-reset challenges in process memory, keyed
// by email. At most one challenge is live per email: issuing a new one
// silently supersedes the previous code. Nothing is persisted, so a restart
// invalidates every outstanding challenge.
//
// A single mutex guards the whole map. Issue and VerifyAndConsume for the
// same email therefore never interleave, which is all the serialization the
// low-frequency reset flow needs.
type Registry struct {
	mu      sync.Mutex
	pending map[string]challenge
	ttl     time.Duration
	now     func() time.Time // swapped out by tests
}

func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		pending: make(map[string]challenge),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Issue mints a uniformly random six-digit code for email and records it with
// a fresh expiry, overwriting any pending challenge for that email. The old
// code becomes unusable immediately; callers are not told whether one existed.
func (r *Registry) Issue(email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeDigits))
	if err != nil {
		return "", fmt.Errorf("generate reset code: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64())

	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.pending[email] = challenge{
		code:      code,
		issuedAt:  now,
		expiresAt: now.Add(r.ttl),
	}
	return code, nil
}

// VerifyAndConsume checks submitted against the pending challenge for email.
//
//   - no pending challenge: domain.ErrNoChallenge
//   - expired: domain.ErrChallengeExpired, and the entry is evicted so a
//     retry reports ErrNoChallenge
//   - wrong code: domain.ErrCodeMismatch, entry kept so the correct code can
//     still be submitted before expiry
//   - match: the entry is removed and nil is returned exactly once; replaying
//     the same code reports ErrNoChallenge
func (r *Registry) VerifyAndConsume(email, submitted string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.pending[email]
	if !ok {
		return domain.ErrNoChallenge
	}
	if r.now().After(c.expiresAt) {
		delete(r.pending, email)
		return domain.ErrChallengeExpired
	}
	if subtle.ConstantTimeCompare([]byte(c.code), []byte(submitted)) != 1 {
		return domain.ErrCodeMismatch
	}
	delete(r.pending, email)
	return nil
}
