package tissue

import "errors"

// ErrCapacityExceeded is returned by callers that need to distinguish
// "the store is full" from other setup failures; Store.NewCell itself
// just returns NoCell, matching the original's silent skip-the-division
// behavior, but pattern loading wants a hard error for an upfront
// CreateCell/CreateSquareGrid overflow.
var ErrCapacityExceeded = errors.New("tissue: cell store capacity exceeded")
