package comm

import "errors"

var (
	ErrPayloadTooLarge  = errors.New("comm: payload too large")
	ErrInvalidAnimation = errors.New("comm: invalid animation")
	ErrSchemeSize       = errors.New("comm: color scheme must contain 1-10 colors")
	ErrShortField       = errors.New("comm: short field")
)
