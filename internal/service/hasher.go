package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// ErrMalformedHash is returned by Verify when the stored value cannot be parsed.
var ErrMalformedHash = errors.New("malformed password hash")

// PasswordHasher provides salted one-way hashing and verification.
type PasswordHasher interface {
	// Hash produces an encoded hash that embeds its salt and parameters.
	Hash(password string) (string, error)
	// Verify returns (true, nil) on match, (false, nil) on mismatch and an error only
	// when encoded is malformed.
	Verify(password, encoded string) (bool, error)
}

// Argon2Params are the argon2id cost parameters. MemoryKiB is in KiB.
type Argon2Params struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
	SaltLen   uint32
	KeyLen    uint32
}

// DefaultArgon2Params follow the OWASP argon2id recommendation.
var DefaultArgon2Params = Argon2Params{
	Time:      1,
	MemoryKiB: 64 * 1024,
	Threads:   4,
	SaltLen:   16,
	KeyLen:    32,
}

// A stored hash may ask for at most argon2CostFactor times the configured cost,
// and never less than these floors, before it is treated as malformed.
const (
	argon2CostFactor     = 4
	minMemoryLimitKiB    = 256 * 1024
	minIterationsLimit   = 16
	maxArgon2Threads     = 255
	maxArgon2KeyLenBytes = 1024
)

// Argon2idHasher implements PasswordHasher with argon2id and PHC-formatted output:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
//
// bcrypt hashes ($2a$, $2b$, $2y$) written by earlier deployments are still verified.
type Argon2idHasher struct {
	params Argon2Params
}

func NewArgon2idHasher(p Argon2Params) *Argon2idHasher {
	if p.SaltLen == 0 {
		p.SaltLen = DefaultArgon2Params.SaltLen
	}
	if p.KeyLen == 0 {
		p.KeyLen = DefaultArgon2Params.KeyLen
	}
	return &Argon2idHasher{params: p}
}

var _ PasswordHasher = (*Argon2idHasher)(nil)

func (h *Argon2idHasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.MemoryKiB, h.params.Threads, h.params.KeyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.MemoryKiB,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *Argon2idHasher) Verify(password, encoded string) (bool, error) {
	if isBcrypt(encoded) {
		return verifyBcrypt(password, encoded)
	}

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return false, fmt.Errorf("%w: expected 6 segments", ErrMalformedHash)
	}
	if parts[1] != "argon2id" {
		return false, fmt.Errorf("%w: unsupported algorithm %q", ErrMalformedHash, parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, fmt.Errorf("%w: version: %v", ErrMalformedHash, err)
	}
	if version != argon2.Version {
		return false, fmt.Errorf("%w: unsupported version %d", ErrMalformedHash, version)
	}

	var memory, iterations, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false, fmt.Errorf("%w: params: %v", ErrMalformedHash, err)
	}
	if threads == 0 || threads > maxArgon2Threads || iterations == 0 {
		return false, fmt.Errorf("%w: params out of range", ErrMalformedHash)
	}
	maxMemory, maxIterations := h.costLimits()
	if memory > maxMemory || iterations > maxIterations {
		return false, fmt.Errorf("%w: cost m=%d,t=%d exceeds limit m=%d,t=%d",
			ErrMalformedHash, memory, iterations, maxMemory, maxIterations)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("%w: salt: %v", ErrMalformedHash, err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("%w: key: %v", ErrMalformedHash, err)
	}
	if len(want) == 0 || len(want) > maxArgon2KeyLenBytes {
		return false, fmt.Errorf("%w: key length %d", ErrMalformedHash, len(want))
	}

	got := argon2.IDKey([]byte(password), salt, iterations, memory, uint8(threads), uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// costLimits bounds the memory and iterations Verify will spend on a stored hash.
func (h *Argon2idHasher) costLimits() (memoryKiB, iterations uint32) {
	return scaledLimit(h.params.MemoryKiB, minMemoryLimitKiB), scaledLimit(h.params.Time, minIterationsLimit)
}

func scaledLimit(configured, floor uint32) uint32 {
	limit := uint64(configured) * argon2CostFactor
	if limit < uint64(floor) {
		return floor
	}
	if limit > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(limit)
}

func isBcrypt(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") ||
		strings.HasPrefix(encoded, "$2b$") ||
		strings.HasPrefix(encoded, "$2y$")
}

func verifyBcrypt(password, encoded string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
}
