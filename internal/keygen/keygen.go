// Package keygen produces opaque, human-shareable license keys of the form
// PRE-XXXX-XXXX-XXXX, where PRE is derived from the product name.
package keygen

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	"strings"
	"unicode"

	"github.com/keybox-dev/keybox-go/constant"
)

// Generator creates license keys. The zero value is not usable; use New.
type Generator struct {
	entropy io.Reader
}

// New returns a Generator reading randomness from crypto/rand.
func New() *Generator {
	return &Generator{entropy: rand.Reader}
}

// NewWithReader returns a Generator that draws randomness from r. Tests use it
// to force collisions.
func NewWithReader(r io.Reader) *Generator {
	return &Generator{entropy: r}
}

// Generate returns a new key for productName.
func (g *Generator) Generate(productName string) (string, error) {
	var b strings.Builder

	b.WriteString(Prefix(productName))

	buf := make([]byte, constant.KeySegmentBytes)

	for i := 0; i < constant.KeySegments; i++ {
		if _, err := io.ReadFull(g.entropy, buf); err != nil {
			return "", err
		}

		b.WriteByte('-')
		b.WriteString(strings.ToUpper(hex.EncodeToString(buf)))
	}

	return b.String(), nil
}

// Prefix derives the key prefix from the first letters and digits of productName.
func Prefix(productName string) string {
	var b strings.Builder

	for _, r := range productName {
		if b.Len() == constant.KeyPrefixLength {
			break
		}

		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}

	if b.Len() == 0 {
		return constant.KeyFallbackPrefix
	}

	for b.Len() < constant.KeyPrefixLength {
		b.WriteString(constant.KeyPrefixFiller)
	}

	return b.String()
}
