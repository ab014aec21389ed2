// Package roomcode produces the short codes humans type to join a room.
// The code space is deliberately tiny, so collisions are expected; callers
// retry Generate against the storage uniqueness constraint.
package roomcode

import (
	"crypto/rand"
	"strings"
)

const (
	Length   = 4
	alphabet = "ABCDEFGHIJKLMNPQRSTUVWXYZ0123456789"
)

func Generate() string {
	buf := make([]byte, Length)
	_, _ = rand.Read(buf)

	var builder strings.Builder
	builder.Grow(Length)
	for _, b := range buf {
		builder.WriteByte(alphabet[int(b)%len(alphabet)])
	}

	return builder.String()
}

// Normalize maps user input onto the stored form: trimmed, uppercase.
// Lookup by code is case-insensitive per the room directory contract.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func Valid(code string) bool {
	if len(code) != Length {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(alphabet, rune(code[i])) {
			return false
		}
	}
	return true
}
