package types

import "errors"

// Error kinds returned by the scaler packages. Callers match them with errors.Is.
var (
	ErrDecode        = errors.New("decode error")
	ErrFilesystem    = errors.New("filesystem error")
	ErrConfiguration = errors.New("configuration error")
	ErrEncode        = errors.New("encode error")
)
