package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Generator mints the opaque identifiers handed out for results,
// predictions, disputes and settlement runs. IDs never encode meaning;
// ordering and lineage live in the records themselves.
type Generator interface {
	NewID() (string, error)
}

// RandomGenerator produces 128-bit hex identifiers from crypto/rand.
type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) NewID() (string, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}

	return hex.EncodeToString(buf[:]), nil
}
