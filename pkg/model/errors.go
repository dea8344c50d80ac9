package model

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrEmptyProfile is returned when a computation is asked to run on a profile without ballots
var ErrEmptyProfile = errors.New("profile has no ballots")

// ConfigurationError reports a ballot that does not fit the declared candidate universe
type ConfigurationError struct {
	Ballot    int       // index of the offending ballot, -1 when not tied to a ballot
	Candidate Candidate // offending candidate id
	Reason    string
}

func (e *ConfigurationError) Error() string {
	if e.Ballot < 0 {
		return fmt.Sprintf("invalid configuration: candidate %d: %s", e.Candidate, e.Reason)
	}
	return fmt.Sprintf("invalid configuration: ballot %d: candidate %d: %s", e.Ballot, e.Candidate, e.Reason)
}

// IsConfigurationError reports whether err carries a ConfigurationError anywhere in its chain
func IsConfigurationError(err error) bool {
	var cerr *ConfigurationError
	return errors.As(err, &cerr)
}
