package check

import "errors"

var (
	// ErrInvalidBound is returned for a range bound that is NaN, infinite or
	// has its minimum above its maximum.
	ErrInvalidBound = errors.New("invalid range bound")

	// ErrInvalidPhoneRules is returned when the phone digit bounds are not
	// positive or the minimum exceeds the maximum.
	ErrInvalidPhoneRules = errors.New("invalid phone digit bounds")
)
