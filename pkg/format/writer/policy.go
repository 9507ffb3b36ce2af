package writer

import (
	"fmt"
	"strings"
)

// FailurePolicy decides what a writer returns after a write failure has been
// logged.
type FailurePolicy interface {
	// Name returns the policy name as used in configuration.
	Name() string

	// Handle receives the logged failure and returns the error the writer
	// reports to its caller, or nil to suppress it.
	Handle(err error) error
}

// Result describes one write.
type Result struct {
	// Path is the destination file.
	Path string

	// Failure is the *format.WriteError of a failed write, whatever the
	// policy returned.
	Failure error
}

// Failed reports whether the write failed.
func (r Result) Failed() bool {
	return r.Failure != nil
}

// Failure modes accepted by PolicyFor.
const (
	ModeSuppress = "suppress"
	ModeStrict   = "strict"
)

var (
	// Suppress logs write failures and reports success so that one unwritable
	// destination does not stop the rest of a batch.
	Suppress FailurePolicy = suppressPolicy{}

	// Strict logs write failures and returns them.
	Strict FailurePolicy = strictPolicy{}
)

type suppressPolicy struct{}

func (suppressPolicy) Name() string           { return ModeSuppress }
func (suppressPolicy) Handle(err error) error { return nil }

type strictPolicy struct{}

func (strictPolicy) Name() string           { return ModeStrict }
func (strictPolicy) Handle(err error) error { return err }

// PolicyFor returns the policy for a configured failure mode. An empty mode
// selects Suppress.
func PolicyFor(mode string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeSuppress:
		return Suppress, nil
	case ModeStrict:
		return Strict, nil
	default:
		return nil, fmt.Errorf("unknown failure mode %q (must be one of: suppress, strict)", mode)
	}
}
