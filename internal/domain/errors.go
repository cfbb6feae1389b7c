package domain

import "errors"

// ErrDecode indicates that an uploaded payload could not be decoded
// as an image in any supported format.
var ErrDecode = errors.New("payload is not a decodable image")
