package cleanse

import "errors"

var (
	ErrNothingPending = errors.New("no pending decision")
	ErrInvalidWinner  = errors.New("winner must be team 1 or team 2")
	ErrSpanTooLarge   = errors.New("log spans more time than the resample limit")
)
