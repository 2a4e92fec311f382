package template

import (
	"errors"
	"testing"
)

func TestValidateXML_AcceptsWellFormedDocument(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?><project><description>ok</description></project>`
	if err := ValidateXML(doc); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidateXML_RejectsUnbalancedTags(t *testing.T) {
	err := ValidateXML(`<project><builders></project>`)
	if err == nil {
		t.Fatalf("expected validation error")
	}

	var invalid *InvalidTemplateError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidTemplateError, got %T: %v", err, err)
	}
}

func TestValidateXML_RejectsEmptyDocument(t *testing.T) {
	var invalid *InvalidTemplateError
	if err := ValidateXML("  "); !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidTemplateError for empty document, got %v", err)
	}
}

func TestValidateXML_UnescapedAmpersandFailsValidation(t *testing.T) {
	// Verbatim substitution can produce broken XML; the validation pass is
	// what catches it before hand-off.
	err := ValidateXML(`<url>https://example.org/?a=1&b=2</url>`)
	if err == nil {
		t.Fatalf("expected validation error for raw ampersand")
	}
}
