package http

import (
	"errors"
	"strings"
	"testing"
)

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func TestHex32Validation(t *testing.T) {
	type P struct {
		InvestorID string `validate:"hex32"`
	}
	cv := NewValidator()

	// valid: 32-char lowercase hex
	ok := P{InvestorID: strings.Repeat("a", 32)}
	if err := cv.Validate(ok); err != nil {
		t.Fatalf("expected valid hex32, got err: %v", err)
	}

	// invalid samples
	for _, s := range []string{
		"",                                  // empty
		strings.Repeat("A", 32),             // uppercase
		"deadbeef",                          // too short
		strings.Repeat("g", 32),             // non-hex char
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c8",   // 31 chars
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c88x", // 33 with extra
	} {
		err := cv.Validate(P{InvestorID: s})
		if err == nil {
			t.Fatalf("expected error for %q", s)
		}
		if !containsFieldMsg(ToFieldErrors(err), "InvestorID", "32-char lowercase hex") {
			t.Fatalf("expected hex32 message for %q, got: %+v", s, ToFieldErrors(err))
		}
	}
}

func TestMoneyValidation(t *testing.T) {
	type P struct {
		Amount string `validate:"money"`
	}
	cv := NewValidator()

	for _, v := range []string{"1", "0.01", "1000000", "2500.5", "2500.50", "100.100", "9999999999999999.99"} {
		if err := cv.Validate(P{Amount: v}); err != nil {
			t.Fatalf("expected money OK for %q, got %v", v, err)
		}
	}
	for _, v := range []string{"", "0", "-5", "0.00", "1.234", "0.001", "abc", "10,00", "10000000000000000", "123456789012345678.5"} {
		err := cv.Validate(P{Amount: v})
		if err == nil {
			t.Fatalf("expected money error for %q", v)
		}
		if !containsFieldMsg(ToFieldErrors(err), "Amount", "at most 2 decimal places") {
			t.Fatalf("expected money message for %q, got %+v", v, ToFieldErrors(err))
		}
	}
}

func TestOptionalMoney(t *testing.T) {
	type P struct {
		Amount string `validate:"omitempty,money"`
	}
	cv := NewValidator()
	if err := cv.Validate(P{}); err != nil {
		t.Fatalf("empty optional amount should pass: %v", err)
	}
	if err := cv.Validate(P{Amount: "0"}); err == nil {
		t.Fatalf("explicit zero should fail")
	}
	if !mustMoney("").IsZero() || mustMoney("12.30").StringFixed(2) != "12.30" {
		t.Fatalf("mustMoney parse mismatch")
	}
}

func TestRequiredAndOneOfMapping(t *testing.T) {
	type P struct {
		Name string `validate:"required"`
		Type string `validate:"oneof=full partial"`
		Note string `validate:"max=5"`
	}
	cv := NewValidator()

	err := cv.Validate(P{Name: "", Type: "half", Note: "too long"})
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	fe := ToFieldErrors(err)
	if !containsFieldMsg(fe, "Name", "is required") {
		t.Fatalf("missing 'is required' for Name: %+v", fe)
	}
	if !containsFieldMsg(fe, "Type", "one of: full partial") {
		t.Fatalf("missing oneof message for Type: %+v", fe)
	}
	if !containsFieldMsg(fe, "Note", "at most 5 characters") {
		t.Fatalf("missing max message for Note: %+v", fe)
	}
}

func TestToFieldErrors_NonValidation(t *testing.T) {
	fe := ToFieldErrors(errors.New("boom"))
	if len(fe) != 1 {
		t.Fatalf("expected 1 field error, got %d", len(fe))
	}
	if fe[0].Field != "_" || fe[0].Message != "boom" {
		t.Fatalf("unexpected mapping: %+v", fe[0])
	}
}
