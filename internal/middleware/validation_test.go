package middleware

import "testing"

type sampleRequest struct {
	Name   string `validate:"required,min=3"`
	Email  string `validate:"required,email"`
	Amount int64  `validate:"gt=0"`
}

func TestValidateRequest(t *testing.T) {
	if errs := ValidateRequest(sampleRequest{Name: "abc", Email: "a@b.com", Amount: 1}); errs != nil {
		t.Fatalf("expected no errors, got %+v", errs)
	}

	errs := ValidateRequest(sampleRequest{Name: "ab", Email: "nope"})
	if errs == nil {
		t.Fatal("expected validation errors")
	}

	byField := map[string]ValidationError{}
	for _, e := range errs {
		byField[e.Field] = e
	}
	if e, ok := byField["Name"]; !ok || e.Message != "Value is too short" {
		t.Errorf("unexpected Name error: %+v", e)
	}
	if e, ok := byField["Email"]; !ok || e.Message != "Invalid email format" {
		t.Errorf("unexpected Email error: %+v", e)
	}
	if e, ok := byField["Amount"]; !ok || e.Message != "Value must be greater than 0" {
		t.Errorf("unexpected Amount error: %+v", e)
	}
}
