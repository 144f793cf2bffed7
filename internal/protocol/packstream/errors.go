package packstream

import "errors"

var (
	ErrUnsupportedValueType = errors.New("packstream: unsupported value type")
	ErrStructTooLarge       = errors.New("packstream: struct has too many fields")
	ErrSizeTooLarge         = errors.New("packstream: size exceeds 32-bit limit")
)
