package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dErrors "storeops/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "internal_error" {
			t.Fatalf("expected error code internal_error, got %q", body["error"])
		}
		if _, ok := body["error_description"]; ok {
			t.Fatalf("expected error_description to be omitted for internal errors")
		}
	})

	t.Run("already clocked in is a bad request with description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeAlreadyClockedIn, "Ana is already clocked in today."))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error_description"] != "Ana is already clocked in today." {
			t.Fatalf("unexpected description %q", body["error_description"])
		}
	})

	t.Run("window denial maps to forbidden", func(t *testing.T) {
		if got := StatusFor(dErrors.CodeOutsideClockWindow); got != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", got)
		}
		if got := StatusFor(dErrors.CodeStoreClosedLogin); got != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", got)
		}
	})
}

func TestDecode(t *testing.T) {
	type payload struct {
		StoreID string `json:"store_id"`
	}

	t.Run("valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"store_id":"Lawrence"}`))
		w := httptest.NewRecorder()
		got, ok := Decode[payload](w, r, nil)
		if !ok || got.StoreID != "Lawrence" {
			t.Fatalf("expected decoded payload, got %+v ok=%v", got, ok)
		}
	})

	t.Run("malformed body writes 400", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"store_id":`))
		w := httptest.NewRecorder()
		if _, ok := Decode[payload](w, r, nil); ok {
			t.Fatalf("expected decode failure")
		}
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}

type storeRequest struct {
	StoreID string `json:"store_id"`
}

func (r *storeRequest) Validate() error {
	r.StoreID = strings.TrimSpace(r.StoreID)
	if r.StoreID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "store_id is required")
	}
	return nil
}

func TestDecodeAndValidate(t *testing.T) {
	t.Run("normalizes a valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"store_id":" Lawrence "}`))
		w := httptest.NewRecorder()
		got, ok := DecodeAndValidate[storeRequest](w, r, nil)
		if !ok || got.StoreID != "Lawrence" {
			t.Fatalf("expected normalized payload, got %+v ok=%v", got, ok)
		}
	})

	t.Run("validation failure writes the domain error", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
		w := httptest.NewRecorder()
		if _, ok := DecodeAndValidate[storeRequest](w, r, nil); ok {
			t.Fatalf("expected validation failure")
		}
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}
