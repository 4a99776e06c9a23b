package service

import (
	"fmt"

	"github.com/jaevor/go-nanoid"
)

const (
	secretAlphabet  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	loginIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// 20 symbols over 62 characters is ~119 bits.
	secretLength  = 20
	loginIDLength = 8
	loginIDPrefix = "VEN"
)

// NanoIDCredentialGenerator implements ports.CredentialGenerator.
// nanoid draws from crypto/rand.
type NanoIDCredentialGenerator struct {
	secret  func() string
	loginID func() string
}

// NewCredentialGenerator builds the generators once so that generation itself cannot fail.
func NewCredentialGenerator() (*NanoIDCredentialGenerator, error) {
	secret, err := nanoid.CustomASCII(secretAlphabet, secretLength)
	if err != nil {
		return nil, fmt.Errorf("secret generator: %w", err)
	}
	loginID, err := nanoid.CustomASCII(loginIDAlphabet, loginIDLength)
	if err != nil {
		return nil, fmt.Errorf("login id generator: %w", err)
	}
	return &NanoIDCredentialGenerator{secret: secret, loginID: loginID}, nil
}

// GenerateSecret returns a fresh alphanumeric one-time password.
func (g *NanoIDCredentialGenerator) GenerateSecret() string {
	return g.secret()
}

// GenerateLoginID returns a login handle such as VEN7K2Q9XAB.
func (g *NanoIDCredentialGenerator) GenerateLoginID() string {
	return loginIDPrefix + g.loginID()
}
