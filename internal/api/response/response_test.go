package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSuccess(t *testing.T) {
	w := httptest.NewRecorder()

	Success(w, map[string]int{"cards": 3})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var body SuccessResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.(map[string]any)["cards"] != float64(3) {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(http.ResponseWriter, error)
		status int
	}{
		{"bad request", BadRequest, http.StatusBadRequest},
		{"not found", NotFound, http.StatusNotFound},
		{"unprocessable", UnprocessableEntity, http.StatusUnprocessableEntity},
		{"internal", InternalError, http.StatusInternalServerError},
		{"bad gateway", BadGateway, http.StatusBadGateway},
		{"unavailable", ServiceUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w, errors.New("import failed"))

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			var body ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != tt.status || body.Message != "import failed" || body.Error != http.StatusText(tt.status) {
				t.Errorf("unexpected body %+v", body)
			}
		})
	}
}

func TestPaginated(t *testing.T) {
	tests := []struct {
		total, size, wantPages int
	}{
		{0, 50, 1},
		{50, 50, 1},
		{51, 50, 2},
		{10, 0, 1},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		Paginated(w, []int{}, 1, tt.size, tt.total)

		var body PaginatedResponse
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.TotalPages != tt.wantPages {
			t.Errorf("total=%d size=%d: TotalPages = %d, want %d", tt.total, tt.size, body.TotalPages, tt.wantPages)
		}
	}
}

func TestBinary(t *testing.T) {
	w := httptest.NewRecorder()

	Binary(w, "image/png", "deck.png", []byte{1, 2, 3})

	if w.Header().Get("Content-Disposition") != "attachment; filename=deck.png" {
		t.Errorf("Content-Disposition = %q", w.Header().Get("Content-Disposition"))
	}
	if w.Body.Len() != 3 {
		t.Errorf("body length = %d", w.Body.Len())
	}
}
