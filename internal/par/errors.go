package par

import "errors"

// Sanity-pass failures: fatal, no retry.
var (
	ErrTooManyMCs          = errors.New("par: too many macrocells for device capacity")
	ErrTooManyPTerms       = errors.New("par: too many unique product terms for device capacity")
	ErrTooManyBufgClk      = errors.New("par: too many BUFGCLK nodes (max 3)")
	ErrTooManyBufgGts      = errors.New("par: too many BUFGGTS nodes (max 4)")
	ErrTooManyBufgGsr      = errors.New("par: too many BUFGGSR nodes (max 1)")
	ErrGlobalNetWrongLoc   = errors.New("par: global buffer LOC does not match its driving macrocell's LOC")
	ErrPTCNeverSatisfiable = errors.New("par: macrocell uses PTC for both CE and XOR-input with different product terms")
)

// ErrIterationsExceeded is returned by Do when max_iter repair rounds elapse
// without reaching a zero-violation placement.
var ErrIterationsExceeded = errors.New("par: iteration budget exceeded without a valid placement")
