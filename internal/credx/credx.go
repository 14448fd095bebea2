// Package credx encodes cached remote-tracker credentials for storage in the
// config file.
//
// The encoding is reversible base64, not encryption. It is a convenience
// cache so the user is not asked to type the password on every startup, and
// must never be treated as a trust mechanism.
package credx

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var ErrMalformed = errors.New("malformed credentials string")

// Encode packs a username/password pair into a single opaque string.
func Encode(username, password string) string {
	combined := fmt.Sprintf("%s:%s", username, password)
	return base64.StdEncoding.EncodeToString([]byte(combined))
}

// Decode unpacks a string produced by Encode. The split is on the first ':'
// only, so passwords containing ':' round-trip intact.
func Decode(encoded string) (username, password string, err error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	username, password, ok := strings.Cut(string(raw), ":")
	if !ok {
		return "", "", ErrMalformed
	}
	return username, password, nil
}
