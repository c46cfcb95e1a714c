package otpcode

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// ErrInvalidLength indicates the requested code length is not usable.
var ErrInvalidLength = errors.New("otpcode: length must be between 4 and 10 digits")

// Generator produces one-time passcodes.
type Generator interface {
	// Generate returns a new fixed-length numeric code.
	Generate() (string, error)
}

// Numeric generates fixed-length numeric codes from crypto/rand.
//
// Codes are uniform over [0, 10^length) and zero-padded, so leading zeros
// are as likely as any other digit.
type Numeric struct {
	length int
	max    *big.Int
}

// NewNumeric constructs a Numeric generator for the given code length.
func NewNumeric(length int) (*Numeric, error) {
	if length < 4 || length > 10 {
		return nil, ErrInvalidLength
	}

	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)

	return &Numeric{length: length, max: max}, nil
}

// Generate returns a new fixed-length numeric code.
func (n *Numeric) Generate() (string, error) {
	v, err := rand.Int(rand.Reader, n.max)
	if err != nil {
		return "", err
	}

	code := v.String()
	for len(code) < n.length {
		code = "0" + code
	}

	return code, nil
}

// Length returns the configured code length.
func (n *Numeric) Length() int {
	return n.length
}
