// Package cursor implements the resumable position marker of a drive query
// stream.
package cursor

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

// Version is the current cursor format version.
const Version = 1

// ErrInvalidCursor indicates the cursor could not be decoded.
var ErrInvalidCursor = errors.New("cursor: invalid format")

// Cursor marks the last record observed in the remote ordering. Token is the
// server's own cursor value and is never interpreted locally.
type Cursor struct {
	Version int `json:"v"`

	Token string `json:"t,omitempty"`

	// LatestModified is the highest modified timestamp (unix ms) seen up to
	// this position. Informational only.
	LatestModified int64 `json:"m,omitempty"`
}

// New returns a cursor positioned at token.
func New(token string, latestModified int64) *Cursor {
	return &Cursor{Version: Version, Token: token, LatestModified: latestModified}
}

// Encode serialises the cursor to a compact URL-safe string. A zero Version
// is written as the current Version.
func (c *Cursor) Encode() string {
	if c == nil {
		return ""
	}
	v := *c
	if v.Version == 0 {
		v.Version = Version
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(data)
}

// Decode parses a string produced by Encode. The empty string decodes to an
// empty cursor.
func Decode(s string) (*Cursor, error) {
	if s == "" {
		return &Cursor{Version: Version}, nil
	}

	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, ErrInvalidCursor
	}
	if c.Version < 1 || c.Version > Version {
		return nil, ErrInvalidCursor
	}

	return &c, nil
}

// IsEmpty reports whether the cursor points at the start of the stream.
func (c *Cursor) IsEmpty() bool {
	return c == nil || c.Token == ""
}

// Equal compares two cursors by value; nil equals nil only.
func (c *Cursor) Equal(o *Cursor) bool {
	if c == nil || o == nil {
		return c == o
	}
	return *c == *o
}
