package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const digits = "0123456789"

// Generator creates the identifiers handed out to game clients. Game ids are
// random 10-digit numerals; collisions are theoretically possible and are not
// retried, matching the client contract.
type Generator interface {
	NewGameID() (string, error)
	NewGuestSuffix() (string, error)
	NewFileName(ext string) (string, error)
}

type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) NewGameID() (string, error) {
	return randomDigits(10)
}

// NewGuestSuffix returns the 4-digit tail for placeholder usernames.
func (g *RandomGenerator) NewGuestSuffix() (string, error) {
	return randomDigits(4)
}

func (g *RandomGenerator) NewFileName(ext string) (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(buf) + ext, nil
}

func randomDigits(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = digits[int(b)%len(digits)]
	}
	return string(out), nil
}
