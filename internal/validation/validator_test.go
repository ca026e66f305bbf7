// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

func TestSearchRequest(t *testing.T) {
	tests := []struct {
		name      string
		input     SearchRequest
		wantField string
		wantTag   string
	}{
		{name: "valid", input: SearchRequest{Query: "rainy jazz", Type: "music", Page: 1, PageSize: 12}},
		{name: "type omitted", input: SearchRequest{Query: "x", Page: 2, PageSize: 5}},
		{name: "missing query", input: SearchRequest{Page: 1, PageSize: 12}, wantField: "q", wantTag: "required"},
		{name: "bad type", input: SearchRequest{Query: "x", Type: "podcast", Page: 1, PageSize: 12}, wantField: "type", wantTag: "oneof"},
		{name: "page zero", input: SearchRequest{Query: "x", Page: 0, PageSize: 12}, wantField: "page", wantTag: "gte"},
		{name: "page size too large", input: SearchRequest{Query: "x", Page: 1, PageSize: 500}, wantField: "pageSize", wantTag: "lte"},
		{name: "query too long", input: SearchRequest{Query: strings.Repeat("a", 201), Page: 1, PageSize: 12}, wantField: "q", wantTag: "max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			if len(err.Errors()) != 1 {
				t.Fatalf("expected one error, got %v", err)
			}
			fe := err.Errors()[0]
			if fe.Field() != tt.wantField || fe.Tag() != tt.wantTag {
				t.Errorf("got %s/%s, want %s/%s", fe.Field(), fe.Tag(), tt.wantField, tt.wantTag)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	err := ValidateStruct(&SearchRequest{Query: "x", Type: "podcast", Page: 1, PageSize: 12})
	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q", apiErr.Code)
	}
	if apiErr.Message != "type must be one of: all movie music" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "type" {
		t.Errorf("Details = %v", apiErr.Details)
	}

	multi := ValidateStruct(&SearchRequest{Page: 0, PageSize: 0}).ToAPIError()
	fields, ok := multi.Details["fields"].([]map[string]any)
	if !ok || len(fields) != 3 {
		t.Fatalf("expected 3 field errors, got %v", multi.Details)
	}
	if !strings.Contains(multi.Message, "q is required") {
		t.Errorf("combined message missing query error: %q", multi.Message)
	}
}

func TestOtherRequests(t *testing.T) {
	if err := ValidateStruct(&TrendingRequest{Type: "all", Limit: 15}); err != nil {
		t.Errorf("trending: %v", err)
	}
	if err := ValidateStruct(&TrendingRequest{Limit: 0}); err == nil {
		t.Error("trending limit 0 should fail")
	}
	if err := ValidateStruct(&AutocompleteRequest{}); err != nil {
		t.Errorf("empty autocomplete should pass: %v", err)
	}
	if err := ValidateStruct(&PreviewRequest{Artist: "M83"}); err == nil || err.Errors()[0].Field() != "title" {
		t.Errorf("preview without title: %v", err)
	}
}

func TestTranslateMessages(t *testing.T) {
	err := ValidateStruct(&PreviewRequest{Title: strings.Repeat("t", 301)})
	if err == nil || err.Error() != "title must be at most 300 characters" {
		t.Errorf("unexpected message: %v", err)
	}
	err = ValidateStruct(&SearchRequest{Query: "x", Page: 1, PageSize: 0})
	if err == nil || err.Error() != "pageSize must be greater than or equal to 1" {
		t.Errorf("unexpected message: %v", err)
	}
}
