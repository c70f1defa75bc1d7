package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "roombook/pkg/errors"
	"roombook/pkg/timeutil"
)

func TestQueryDate(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    timeutil.Date
		wantErr bool
	}{
		{"valid", "/x?date=2030-06-15", timeutil.NewDate(2030, 6, 15), false},
		{"missing", "/x", timeutil.Date{}, true},
		{"wrong layout", "/x?date=15/06/2030", timeutil.Date{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.url, nil)
			got, err := QueryDate(r, "date")
			if tt.wantErr {
				var appErr *apperrors.AppError
				if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeInvalidInput {
					t.Fatalf("expected INVALID_INPUT, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("QueryDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQueryTime(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x?start=09:00&bad=9am", nil)

	got, err := QueryTime(r, "start")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != timeutil.NewTimeOfDay(9, 0) {
		t.Errorf("QueryTime() = %v, want 09:00", got)
	}

	if _, err := QueryTime(r, "bad"); err == nil {
		t.Error("expected error for malformed time")
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", apperrors.Validation("Start time must be before end time", nil), http.StatusUnprocessableEntity},
		{"not found", apperrors.NotFound("Reservation"), http.StatusNotFound},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			if err := WriteError(rec, tt.err); err != nil {
				t.Fatalf("WriteError() error = %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
		})
	}
}
