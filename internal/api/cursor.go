package api

import (
	"encoding/base64"
	"errors"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/openlove-social/openlove/internal/post"
)

// ErrInvalidCursor indicates a cursor that could not be decoded. Treated
// as a validation error by the feed handler.
var ErrInvalidCursor = errors.New("invalid cursor")

// wireCursor is the CBOR wire form of a feed cursor. Timestamps travel as
// unix nanoseconds so encoding is independent of CBOR time tag handling.
type wireCursor struct {
	CreatedAt int64  `cbor:"1,keyasint"`
	ID        string `cbor:"2,keyasint"`
}

// EncodeCursor serializes a feed cursor to an opaque URL-safe token.
func EncodeCursor(c *post.FeedCursor) (string, error) {
	if c == nil {
		return "", nil
	}
	data, err := cbor.Marshal(wireCursor{
		CreatedAt: c.CreatedAt.UnixNano(),
		ID:        c.ID,
	})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodeCursor parses an opaque cursor token. An empty token means the
// start of the feed and returns a nil cursor.
func DecodeCursor(token string) (*post.FeedCursor, error) {
	if token == "" {
		return nil, nil
	}
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	var wire wireCursor
	if err := cbor.Unmarshal(data, &wire); err != nil {
		return nil, ErrInvalidCursor
	}
	if wire.ID == "" {
		return nil, ErrInvalidCursor
	}
	return &post.FeedCursor{
		CreatedAt: time.Unix(0, wire.CreatedAt).UTC(),
		ID:        wire.ID,
	}, nil
}
