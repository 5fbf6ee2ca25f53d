// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"
)

var errMalformedHash = errors.New("malformed password hash")

type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
}

var currentParams = argonParams{
	memory:  64 * 1024,
	time:    1,
	threads: 4,
	keyLen:  32,
}

const saltLength = 16

func HashPassword(password string) (string, error) {
	return hashWith(password, currentParams)
}

func hashWith(password string, p argonParams) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, p.keyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.memory,
		p.time,
		p.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyPassword checks password against encodedHash. When the hash was
// produced with outdated parameters and the password matches, a fresh hash
// is returned as rehash.
func VerifyPassword(password, encodedHash string) (ok bool, rehash string, err error) {
	p, salt, want, err := decodeHash(encodedHash)
	if err != nil {
		return false, "", err
	}

	got := argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, p.keyLen)
	if subtle.ConstantTimeCompare(want, got) != 1 {
		return false, "", nil
	}

	if p != currentParams {
		if fresh, hashErr := HashPassword(password); hashErr == nil {
			rehash = fresh
		}
	}

	return true, rehash, nil
}

var (
	dummyOnce sync.Once
	dummyHash string
)

// VerifyPasswordTimingSafe spends the same work whether or not the account
// exists. A nil or empty hash always fails.
func VerifyPasswordTimingSafe(password string, encodedHash *string) (bool, string, error) {
	if encodedHash == nil || *encodedHash == "" {
		dummyOnce.Do(func() {
			//nolint:errcheck // a failed dummy hash only weakens timing parity
			dummyHash, _ = HashPassword("timing-parity-placeholder")
		})
		//nolint:errcheck // result intentionally discarded
		_, _, _ = VerifyPassword(password, dummyHash)
		return false, "", nil
	}

	return VerifyPassword(password, *encodedHash)
}

func decodeHash(encodedHash string) (argonParams, []byte, []byte, error) {
	var p argonParams

	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, errMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, fmt.Errorf("%w: version: %w", errMalformedHash, err)
	}
	if version != argon2.Version {
		return p, nil, nil, fmt.Errorf("incompatible argon2 version: %d", version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return p, nil, nil, fmt.Errorf("%w: params: %w", errMalformedHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: salt: %w", errMalformedHash, err)
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: key: %w", errMalformedHash, err)
	}

	//nolint:gosec // G115: argon2 key length is always small
	p.keyLen = uint32(len(key))

	return p, salt, key, nil
}

// NewURLHash returns a single-use token for confirmation and restore links.
func NewURLHash() string {
	return uuid.NewString()
}

func GenerateRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	return base64.URLEncoding.EncodeToString(buf), nil
}

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
