package template

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// ValidateXML checks that a rendered document is well-formed XML. It is the
// optional validation pass run between rendering and hand-off; callers that
// target non-XML schedulers can skip it.
func ValidateXML(doc string) error {
	if strings.TrimSpace(doc) == "" {
		return &InvalidTemplateError{Err: errors.New("document is empty")}
	}

	decoder := xml.NewDecoder(strings.NewReader(doc))
	for {
		_, err := decoder.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &InvalidTemplateError{Err: err}
		}
	}
}
