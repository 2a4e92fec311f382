package template

import (
	"fmt"
	"strings"
)

// MissingParameterError reports a placeholder with no matching entry in the
// ParameterSet. Key names the first unresolved placeholder; Keys lists all of
// them in sorted order.
type MissingParameterError struct {
	Key  string
	Keys []string
}

func (e *MissingParameterError) Error() string {
	if len(e.Keys) > 1 {
		return fmt.Sprintf("template: missing parameter %q (unresolved: %s)", e.Key, strings.Join(e.Keys, ", "))
	}
	return fmt.Sprintf("template: missing parameter %q", e.Key)
}

// InvalidTemplateError reports a rendered document that is not well-formed
// XML. Err carries the underlying parser failure.
type InvalidTemplateError struct {
	Err error
}

func (e *InvalidTemplateError) Error() string {
	return fmt.Sprintf("template: invalid document: %v", e.Err)
}

func (e *InvalidTemplateError) Unwrap() error {
	return e.Err
}
