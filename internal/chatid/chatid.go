// Package chatid derives canonical room identifiers from participant pairs.
package chatid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidParticipant is returned when a participant identifier is empty
// or when both identifiers refer to the same user. Self-chats are rejected.
var ErrInvalidParticipant = errors.New("invalid participant")

// delimiter joins the two escaped identifiers. It is itself escaped inside
// identifiers, so the join point is always unambiguous.
const delimiter = '_'

// reserved holds characters that must be escaped inside identifiers:
// the delimiter, the escape character, and characters forbidden in store
// key namespaces.
const reserved = "_%.#$[]/"

// Resolve returns the canonical room ID for the unordered pair {a, b}.
// It is commutative and injective over distinct pairs: identifiers are
// sorted lexicographically, each is percent-escaped, and the results are
// joined with '_'. Escaping (rather than substitution) keeps distinct
// pairs distinct even when identifiers contain reserved characters.
func Resolve(a, b string) (string, error) {
	if a == "" || b == "" {
		return "", fmt.Errorf("%w: empty identifier", ErrInvalidParticipant)
	}
	if a == b {
		return "", fmt.Errorf("%w: self-chat", ErrInvalidParticipant)
	}
	if b < a {
		a, b = b, a
	}
	return escape(a) + string(delimiter) + escape(b), nil
}

// Split recovers the participant pair from a room ID produced by Resolve.
// The pair is returned in sorted order.
func Split(roomID string) (string, string, error) {
	i := strings.IndexByte(roomID, delimiter)
	if i < 0 {
		return "", "", fmt.Errorf("malformed room id %q", roomID)
	}
	a, err := unescape(roomID[:i])
	if err != nil {
		return "", "", err
	}
	b, err := unescape(roomID[i+1:])
	if err != nil {
		return "", "", err
	}
	if a == "" || b == "" {
		return "", "", fmt.Errorf("malformed room id %q", roomID)
	}
	return a, b, nil
}

// escape percent-encodes reserved bytes. The encoding is lossless: unescape
// restores the original identifier exactly.
func escape(s string) string {
	if !strings.ContainsAny(s, reserved) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 6)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if strings.IndexByte(reserved, c) >= 0 {
			fmt.Fprintf(&b, "%%%02X", c)
		} else {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func unescape(s string) (string, error) {
	if !strings.ContainsRune(s, '%') {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			b.WriteByte(s[i])
			continue
		}
		if i+2 >= len(s) {
			return "", fmt.Errorf("truncated escape in %q", s)
		}
		c, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
		if err != nil {
			return "", fmt.Errorf("bad escape in %q: %w", s, err)
		}
		b.WriteByte(byte(c))
		i += 2
	}
	return b.String(), nil
}
