package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"refexcms/internal/domain"
)

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondJSON(rec, http.StatusCreated, map[string]string{"pdfUrl": "/uploads/a.pdf"})

	if rec.Code != http.StatusCreated {
		t.Errorf("status: got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q", ct)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != `{"pdfUrl":"/uploads/a.pdf"}` {
		t.Errorf("body: got %s", body)
	}
}

func TestRespondJSONEncodeFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondJSON(rec, http.StatusOK, map[string]any{"bad": make(chan int)})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", rec.Code)
	}
}

func TestRespondDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
		wantFields map[string]string
	}{
		{
			name:       "validation",
			err:        &domain.ValidationError{Message: "invalid request", Fields: map[string]string{"body": "must be an array of categories"}},
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid request",
			wantFields: map[string]string{"body": "must be an array of categories"},
		},
		{
			name:       "wrapped not found",
			err:        fmt.Errorf("load: %w", &domain.NotFoundError{Message: "category 3 not found"}),
			wantStatus: http.StatusNotFound,
			wantError:  "load: category 3 not found",
		},
		{
			name:       "forbidden",
			err:        &domain.ForbiddenError{Message: "missing permission"},
			wantStatus: http.StatusForbidden,
			wantError:  "missing permission",
		},
		{
			name:       "internal",
			err:        errors.New("pq: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondDomainError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			var body ErrorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error != tt.wantError {
				t.Errorf("error: got %q, want %q", body.Error, tt.wantError)
			}
			if len(body.Fields) != len(tt.wantFields) {
				t.Errorf("fields: got %v, want %v", body.Fields, tt.wantFields)
			}
			for k, v := range tt.wantFields {
				if body.Fields[k] != v {
					t.Errorf("field %s: got %q, want %q", k, body.Fields[k], v)
				}
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		body    string
		wantErr bool
	}{
		{`{"email":"a@b.c"}`, false},
		{`{"email":"a@b.c"} {"x":1}`, true},
		{`{`, true},
		{``, true},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
		var v map[string]string
		err := DecodeJSON(req, &v)
		if (err != nil) != tt.wantErr {
			t.Errorf("DecodeJSON(%q) err = %v, wantErr %v", tt.body, err, tt.wantErr)
		}
	}
}
