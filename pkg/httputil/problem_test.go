package httputil

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestNewProblemDetail(t *testing.T) {
	p := NewProblemDetail(http.StatusBadRequest, "imsi is required")

	if p.Type != "about:blank" {
		t.Errorf("Type = %q, want %q", p.Type, "about:blank")
	}
	if p.Title != "Bad Request" {
		t.Errorf("Title = %q, want %q", p.Title, "Bad Request")
	}
	if p.Detail != "imsi is required" {
		t.Errorf("Detail = %q, want %q", p.Detail, "imsi is required")
	}
}

func TestProblemConstructors(t *testing.T) {
	tests := []struct {
		name   string
		p      *ProblemDetail
		status int
		title  string
	}{
		{"BadRequest", BadRequest("x"), http.StatusBadRequest, "Bad Request"},
		{"NotFound", NotFound("x"), http.StatusNotFound, "Not Found"},
		{"Conflict", Conflict("x"), http.StatusConflict, "Conflict"},
		{"InternalServerError", InternalServerError("x"), http.StatusInternalServerError, "Internal Server Error"},
		{"ServiceUnavailable", ServiceUnavailable("x"), http.StatusServiceUnavailable, "Service Unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.p.Status != tt.status {
				t.Errorf("Status = %d, want %d", tt.p.Status, tt.status)
			}
			if tt.p.Title != tt.title {
				t.Errorf("Title = %q, want %q", tt.p.Title, tt.title)
			}
		})
	}
}

func TestProblemDetailJSONOmitsEmptyDetail(t *testing.T) {
	data, err := NewProblemDetail(http.StatusInternalServerError, "").JSON()
	if err != nil {
		t.Fatalf("JSON() error = %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	// detailフィールドが含まれていないこと
	if _, exists := raw["detail"]; exists {
		t.Error("JSON should omit empty detail field")
	}
}
