// Vitrine - Personal Media Activity Tracker
// Copyright 2026 M. Croft
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mcroft/vitrine

package validation

import (
	"strings"
	"testing"
)

type ratingRequest struct {
	Name   string   `validate:"required,min=1,max=200"`
	Rating *float64 `validate:"omitempty,halfstar"`
}

func ptr(f float64) *float64 { return &f }

func TestHalfStar(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rating  *float64
		wantErr bool
	}{
		{"nil rating allowed", nil, false},
		{"minimum half star", ptr(0.5), false},
		{"maximum", ptr(5.0), false},
		{"mid-scale half step", ptr(3.5), false},
		{"whole star", ptr(4.0), false},
		{"below scale", ptr(0.0), true},
		{"above scale", ptr(5.5), true},
		{"quarter step rejected", ptr(3.25), true},
		{"negative rejected", ptr(-1.0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := ratingRequest{Name: "Carbonara", Rating: tt.rating}
			err := ValidateStruct(&req)
			if tt.wantErr && err == nil {
				t.Errorf("expected validation error for rating %v", tt.rating)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error for rating %v: %v", tt.rating, err)
			}
		})
	}
}

func TestRequiredField(t *testing.T) {
	t.Parallel()

	req := ratingRequest{Name: ""}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error for empty name")
	}
	if len(err.Errors()) != 1 {
		t.Fatalf("expected 1 error, got %d", len(err.Errors()))
	}
	if err.Errors()[0].Tag() != "required" {
		t.Errorf("expected required tag, got %q", err.Errors()[0].Tag())
	}
}

func TestToAPIErrorSingle(t *testing.T) {
	t.Parallel()

	req := ratingRequest{Name: "Risotto", Rating: ptr(7.0)}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR code, got %q", apiErr.Code)
	}
	if apiErr.Details["field"] != "Rating" {
		t.Errorf("expected Rating field in details, got %v", apiErr.Details["field"])
	}
}

func TestToAPIErrorMultiple(t *testing.T) {
	t.Parallel()

	req := ratingRequest{Name: "", Rating: ptr(0.1)}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	if len(err.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(err.Errors()))
	}

	apiErr := err.ToAPIError()
	if !strings.Contains(apiErr.Message, ";") {
		t.Errorf("expected combined message, got %q", apiErr.Message)
	}
	if _, ok := apiErr.Details["fields"]; !ok {
		t.Error("expected fields list in details")
	}
}

func TestValidStructPasses(t *testing.T) {
	t.Parallel()

	req := ratingRequest{Name: "Shakshuka", Rating: ptr(4.5)}
	if err := ValidateStruct(&req); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
