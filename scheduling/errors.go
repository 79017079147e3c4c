package scheduling

import "errors"

// Errors surfaced by the scheduling core. Callers match them with errors.Is;
// wrapped messages carry the specifics.
var (
	// ErrInvalidRoster means the supplied roster cannot be scheduled in the
	// requested format, e.g. an odd player count for a doubles bracket.
	ErrInvalidRoster = errors.New("invalid roster for requested format")

	// ErrBracketConsistency means an advancement targeted a match number the
	// structure does not contain. A correctly built bracket never produces
	// this; treat it as a programming defect, not a runtime condition.
	ErrBracketConsistency = errors.New("bracket structure is inconsistent")
)
