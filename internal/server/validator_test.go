package server

import "testing"

type taggedRequest struct {
	Category string `validate:"omitempty,category"`
	Date     string `validate:"omitempty,isodate"`
}

func TestValidatorCustomTags(t *testing.T) {
	v := NewValidator()

	cases := []struct {
		name    string
		req     taggedRequest
		wantErr bool
	}{
		{"empty", taggedRequest{}, false},
		{"known category", taggedRequest{Category: "Food"}, false},
		{"unknown category", taggedRequest{Category: "travel"}, true},
		{"plain date", taggedRequest{Date: "2024-02-29"}, false},
		{"timestamp", taggedRequest{Date: "2024-02-29T10:00:00Z"}, false},
		{"impossible date", taggedRequest{Date: "2023-02-29"}, true},
		{"short date", taggedRequest{Date: "2024-2-9"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(tc.req)
			if tc.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
