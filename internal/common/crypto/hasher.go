package crypto

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"

	"github.com/daily-task-list/backend/internal/common/constants"
)

var (
	ErrPasswordMismatch = errors.New("password does not match hash")
	ErrUnsupportedHash  = errors.New("unsupported password hash format")
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error
}

// BcryptHasher salts and hashes passwords with bcrypt. A zero Cost uses
// constants.BcryptCost.
//
// The password is reduced to a base64 SHA-256 digest first, so passwords of
// any length hash without hitting bcrypt's 72-byte input limit. Compare also
// accepts the pbkdf2 and scrypt hashes written by the Flask service that
// shares the users collection.
type BcryptHasher struct {
	Cost int
}

func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{Cost: constants.BcryptCost}
}

func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = constants.BcryptCost
	}
	hashed, err := bcrypt.GenerateFromPassword(prehash(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare returns ErrPasswordMismatch for a wrong password and another
// error for a stored hash it cannot read.
func (h *BcryptHasher) Compare(stored string, password string) error {
	switch {
	case strings.HasPrefix(stored, "pbkdf2:"), strings.HasPrefix(stored, "scrypt:"):
		return compareWerkzeug(stored, password)
	}

	err := bcrypt.CompareHashAndPassword([]byte(stored), prehash(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}

const (
	werkzeugPBKDF2Iterations = 600000
	werkzeugScryptKeyLen     = 64
)

// compareWerkzeug checks "method$salt$hexdigest", where method is
// "pbkdf2:<digest>[:<iterations>]" or "scrypt:<n>:<r>:<p>".
func compareWerkzeug(stored, password string) error {
	parts := strings.SplitN(stored, "$", 3)
	if len(parts) != 3 {
		return fmt.Errorf("%w: missing salt or digest", ErrUnsupportedHash)
	}
	method, salt, digestHex := parts[0], parts[1], parts[2]

	want, err := hex.DecodeString(digestHex)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedHash, err)
	}

	params := strings.Split(method, ":")
	var got []byte
	switch params[0] {
	case "pbkdf2":
		got, err = werkzeugPBKDF2(params[1:], salt, password)
	case "scrypt":
		got, err = werkzeugScrypt(params[1:], salt, password)
	}
	if err != nil {
		return err
	}

	if subtle.ConstantTimeCompare(got, want) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

func werkzeugPBKDF2(params []string, salt, password string) ([]byte, error) {
	if len(params) == 0 || len(params) > 2 {
		return nil, fmt.Errorf("%w: pbkdf2 parameters", ErrUnsupportedHash)
	}

	var newHash func() hash.Hash
	switch params[0] {
	case "sha256":
		newHash = sha256.New
	case "sha512":
		newHash = sha512.New
	case "sha1":
		newHash = sha1.New
	default:
		return nil, fmt.Errorf("%w: pbkdf2 digest %q", ErrUnsupportedHash, params[0])
	}

	iterations := werkzeugPBKDF2Iterations
	if len(params) == 2 {
		n, err := strconv.Atoi(params[1])
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: pbkdf2 iterations %q", ErrUnsupportedHash, params[1])
		}
		iterations = n
	}

	return pbkdf2.Key([]byte(password), []byte(salt), iterations, newHash().Size(), newHash), nil
}

func werkzeugScrypt(params []string, salt, password string) ([]byte, error) {
	if len(params) != 3 {
		return nil, fmt.Errorf("%w: scrypt parameters", ErrUnsupportedHash)
	}
	var nrp [3]int
	for i, p := range params {
		v, err := strconv.Atoi(p)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("%w: scrypt parameter %q", ErrUnsupportedHash, p)
		}
		nrp[i] = v
	}

	key, err := scrypt.Key([]byte(password), []byte(salt), nrp[0], nrp[1], nrp[2], werkzeugScryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedHash, err)
	}
	return key, nil
}
