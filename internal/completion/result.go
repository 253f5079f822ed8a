package completion

import "github.com/undergrid/recall/internal/provider"

// Result is the tagged outcome of a completion call. Internal logic
// branches on Failed(); the flattened error-as-text representation
// exists only for display and for the faithful error-summary behavior
// of compaction.
type Result struct {
	Text  string
	Usage provider.TokenUsage
	Err   error
}

// Failed reports whether the call ended in a transport-level failure.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Display returns the text a user should see where the assistant reply
// would appear: the generated text on success, or an error string with
// a distinct prefix on failure. This is the only place the failure
// variant is flattened to a string.
func (r Result) Display() string {
	if r.Err != nil {
		return "Error: " + r.Err.Error()
	}
	return r.Text
}
