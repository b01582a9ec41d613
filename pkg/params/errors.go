package params

import "fmt"

// InputError reports a missing or malformed parameter file. It is fatal:
// the constructor aborts before producing any output.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parameter input: %v", e.Err)
	}
	return fmt.Sprintf("parameter input %s: %v", e.Path, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}
