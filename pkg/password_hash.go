package pkg

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	DefaultSaltLength = 16
	DefaultIterations = 600000

	hashMethodPrefix = "pbkdf2:sha256"
	saltChars        = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var ErrInvalidPasswordHash = errors.New("invalid password hash")

// HashPassword returns a salted PBKDF2-HMAC-SHA256 hash of the password, encoded as
// pbkdf2:sha256:<iterations>$<salt>$<hex digest> (same layout werkzeug uses)
func HashPassword(password string, saltLength, iterations int) (string, error) {
	if saltLength <= 0 {
		return "", fmt.Errorf("invalid salt length: %d", saltLength)
	}
	if iterations <= 0 {
		return "", fmt.Errorf("invalid iterations count: %d", iterations)
	}

	salt, err := GenerateSalt(saltLength)
	if err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	return fmt.Sprintf(
		"%s:%d$%s$%s",
		hashMethodPrefix, iterations, salt, pbkdf2Hex(password, salt, iterations),
	), nil
}

func CheckPasswordHash(password, hash string) bool {
	iterations, salt, digest, err := parsePasswordHash(hash)
	if err != nil {
		return false
	}
	computed := pbkdf2Hex(password, salt, iterations)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}

// GenerateSalt returns n random alphanumeric characters
func GenerateSalt(n int) (string, error) {
	max := big.NewInt(int64(len(saltChars)))
	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(saltChars[idx.Int64()])
	}
	return sb.String(), nil
}

func pbkdf2Hex(password, salt string, iterations int) string {
	dk := pbkdf2.Key([]byte(password), []byte(salt), iterations, sha256.Size, sha256.New)
	return hex.EncodeToString(dk)
}

func parsePasswordHash(hash string) (iterations int, salt, digest string, err error) {
	parts := strings.SplitN(hash, "$", 3)
	if len(parts) != 3 {
		return 0, "", "", ErrInvalidPasswordHash
	}

	method := parts[0]
	if !strings.HasPrefix(method, hashMethodPrefix+":") {
		return 0, "", "", ErrInvalidPasswordHash
	}
	iterations, err = strconv.Atoi(strings.TrimPrefix(method, hashMethodPrefix+":"))
	if err != nil || iterations <= 0 {
		return 0, "", "", ErrInvalidPasswordHash
	}

	return iterations, parts[1], parts[2], nil
}
