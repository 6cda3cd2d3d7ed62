// Package ident generates the user and connection identifiers handed out by
// the server: UUIDv7 values encoded as 26-character Crockford base32 strings,
// so identifiers sort by creation time and are safe in URLs and logs.
package ident

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Base32 alphabet (Crockford's base32, lower case)
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length is the encoded length of an identifier
const Length = 26

// Generator produces identifiers from a configurable entropy source
type Generator struct {
	entropy io.Reader
}

// NewGenerator creates a generator. A nil reader uses crypto/rand.
func NewGenerator(entropy io.Reader) *Generator {
	if entropy == nil {
		entropy = rand.Reader
	}
	return &Generator{entropy: entropy}
}

// New creates an identifier from crypto/rand
func New() string {
	return NewGenerator(nil).New()
}

// New creates a fresh identifier
func (g *Generator) New() string {
	id, err := uuid.NewV7FromReader(g.entropy)
	if err != nil {
		// Only a broken entropy source gets here.
		panic("ident: failed to generate uuid: " + err.Error())
	}
	return encodeBase32(id)
}

// encodeBase32 encodes a 128-bit UUID as a 26-character base32 string
func encodeBase32(data uuid.UUID) string {
	result := make([]byte, Length)

	for i := 0; i < Length; i++ {
		bitOffset := i * 5
		byteIndex := bitOffset / 8
		bitIndex := bitOffset % 8

		var value uint8
		if byteIndex < 16 {
			if bitIndex <= 3 {
				value = (data[byteIndex] >> (3 - bitIndex)) & 0x1f
			} else {
				value = (data[byteIndex] << (bitIndex - 3)) & 0x1f
				if byteIndex+1 < 16 {
					value |= data[byteIndex+1] >> (11 - bitIndex)
				}
			}
		}

		result[i] = alphabet[value]
	}

	return string(result)
}

// Validate checks that id looks like a generated identifier
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("id must be exactly %d characters, got %d", Length, len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("id first character must be 0-7, got %c", id[0])
	}
	for i, char := range id {
		if !strings.ContainsRune(alphabet, char) {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}
	return nil
}
