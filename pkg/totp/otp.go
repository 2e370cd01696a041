package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base32"
	"errors"
	"fmt"
	"hash"
	"math"
	"regexp"
	"strings"
	"time"
)

const (
	DefaultDigits = 6  // Standard 6-digit TOTP codes
	DefaultPeriod = 30 // 30-second validity window (RFC 6238 standard)

	AlgorithmSHA1   = "SHA1"
	AlgorithmSHA256 = "SHA256"
	AlgorithmSHA512 = "SHA512"
)

var (
	// ValidateSecretKeyRegex ensures Base32 format: uppercase A-Z, digits 2-7, optional padding
	ValidateSecretKeyRegex = regexp.MustCompile("^[A-Z2-7]+=*$")

	otpRegex = regexp.MustCompile(fmt.Sprintf(`^\d{%d}$`, DefaultDigits))
)

// GenerateParams configures code generation. Secret is optional; a fresh
// random key is derived when it is empty.
type GenerateParams struct {
	Secret    string // Base32-encoded secret key (optional)
	Algorithm string // HMAC algorithm: SHA1, SHA256 or SHA512
	Period    int    // Code validity period in seconds
}

// Code is the result of Generate: the OTP valid for the current time step
// together with the secret and period it was derived from.
type Code struct {
	OTP    string
	Secret string
	Period int
}

// VerifyParams configures code verification.
type VerifyParams struct {
	OTP       string // Submitted code, exactly DefaultDigits decimal digits
	Secret    string // Base32-encoded secret key
	Algorithm string // Must match the algorithm used at generation
	Period    int    // Must match the period used at generation
	Window    int    // Adjacent time steps accepted on either side; 0 = current step only
}

// GenerateSecretKey generates a new Base32-encoded secret key for TOTP.
func GenerateSecretKey() (string, error) {
	secret := make([]byte, 20) // 160-bit secret (RFC 4226 recommendation)
	if _, err := rand.Read(secret); err != nil {
		return "", errors.Join(ErrFailedToGenerateSecretKey, err)
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(secret), nil
}

// Generate produces the code valid for the time step containing now.
// If no secret is given a fresh one is derived.
func Generate(params GenerateParams) (Code, error) {
	return GenerateWithTime(params, time.Now())
}

// GenerateWithTime produces the code valid for the time step containing t.
func GenerateWithTime(params GenerateParams, t time.Time) (Code, error) {
	h, err := hashFunc(params.Algorithm)
	if err != nil {
		return Code{}, err
	}
	if params.Period <= 0 {
		return Code{}, ErrInvalidPeriod
	}

	secret := params.Secret
	if secret == "" {
		if secret, err = GenerateSecretKey(); err != nil {
			return Code{}, err
		}
	}

	key, err := decodeSecret(secret)
	if err != nil {
		return Code{}, err
	}

	counter := t.Unix() / int64(params.Period)
	code := GenerateHOTP(h, key, counter, DefaultDigits)

	return Code{
		OTP:    fmt.Sprintf("%0*d", DefaultDigits, code),
		Secret: secret,
		Period: params.Period,
	}, nil
}

// Verify checks the submitted code against the time step containing now.
func Verify(params VerifyParams) (bool, error) {
	return VerifyWithTime(params, time.Now())
}

// VerifyWithTime recomputes the expected code for the time step containing t
// and up to Window adjacent steps on either side. Every candidate step is
// evaluated with a constant-time comparison and the results are OR-ed, so the
// comparison structure does not depend on the submitted code.
func VerifyWithTime(params VerifyParams, t time.Time) (bool, error) {
	h, err := hashFunc(params.Algorithm)
	if err != nil {
		return false, err
	}
	if params.Period <= 0 {
		return false, ErrInvalidPeriod
	}
	if params.Window < 0 {
		return false, ErrInvalidWindow
	}

	otp := strings.TrimSpace(params.OTP)
	if !otpRegex.MatchString(otp) {
		return false, ErrInvalidOTP
	}

	key, err := decodeSecret(params.Secret)
	if err != nil {
		return false, err
	}

	counter := t.Unix() / int64(params.Period)

	match := 0
	for i := -params.Window; i <= params.Window; i++ {
		code := GenerateHOTP(h, key, counter+int64(i), DefaultDigits)
		expected := fmt.Sprintf("%0*d", DefaultDigits, code)
		match |= subtle.ConstantTimeCompare([]byte(expected), []byte(otp))
	}

	return match == 1, nil
}

// GenerateHOTP implements the RFC 4226 HMAC-based One-Time Password algorithm
// with a configurable hash function.
func GenerateHOTP(h func() hash.Hash, key []byte, counter int64, digits int) int {
	// Convert counter to big-endian 8-byte array (RFC 4226 requirement)
	counterBytes := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		counterBytes[i] = byte(counter & 0xff)
		counter = counter >> 8
	}

	hmacHash := hmac.New(h, key)
	hmacHash.Write(counterBytes)
	sum := hmacHash.Sum(nil)

	// Dynamic truncation (RFC 4226): use last 4 bits as offset into hash
	offset := sum[len(sum)-1] & 0x0f
	// Extract 31-bit value (clear MSB to ensure positive number)
	code := (int(sum[offset]&0x7f) << 24) |
		(int(sum[offset+1]&0xff) << 16) |
		(int(sum[offset+2]&0xff) << 8) |
		(int(sum[offset+3] & 0xff))

	return code % int(math.Pow10(digits))
}

func hashFunc(algorithm string) (func() hash.Hash, error) {
	switch strings.ToUpper(strings.TrimSpace(algorithm)) {
	case AlgorithmSHA1:
		return sha1.New, nil
	case AlgorithmSHA256:
		return sha256.New, nil
	case AlgorithmSHA512:
		return sha512.New, nil
	default:
		return nil, ErrUnsupportedAlgorithm
	}
}

func decodeSecret(secret string) ([]byte, error) {
	secret = strings.TrimSpace(strings.ToUpper(secret))
	if !ValidateSecretKeyRegex.MatchString(secret) {
		return nil, ErrInvalidSecret
	}

	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(strings.TrimRight(secret, "="))
	if err != nil {
		return nil, errors.Join(ErrInvalidSecret, err)
	}
	return key, nil
}
