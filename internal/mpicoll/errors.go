package mpicoll

import "github.com/nikandfor/errors"

var (
	// ErrHostCapability means the CFG does not support an operation the
	// check needs, such as splitting a read-only function.
	ErrHostCapability = errors.New("host capability unavailable")

	// ErrMalformedCFG means the CFG violates a structural assumption of
	// the check, such as a branch without an immediate post-dominator.
	ErrMalformedCFG = errors.New("malformed CFG")
)

// malformed returns ErrMalformedCFG wrapped with a formatted reason.
func malformed(f string, args ...interface{}) error {
	return errors.Wrap(ErrMalformedCFG, f, args...)
}
