package viewport

import (
	"errors"
	"fmt"

	"video-library/internal/indexer"
)

var (
	// ErrInvalidQuery marks search input the user has to correct.
	ErrInvalidQuery = indexer.ErrInvalidQuery
	// ErrInvalidSource marks malformed source flag tuples.
	ErrInvalidSource = errors.New("invalid source")
	// ErrInvalidGroupDef marks a grouping on an unknown field or property.
	ErrInvalidGroupDef = errors.New("invalid grouping")
	// ErrInvalidSorting marks malformed sort tokens.
	ErrInvalidSorting = errors.New("invalid sorting")
	// ErrUnknownStage is returned for stage names outside StageNames.
	ErrUnknownStage = errors.New("unknown stage")
)

// QueryError describes a rejected search.
type QueryError struct {
	Text string
	Cond string
	Err  error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("search %q (%s): %v", e.Text, e.Cond, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
