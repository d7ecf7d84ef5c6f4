package recognition

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/your-org/gatekeeper/internal/config"
)

func newTestClient(url string) *Client {
	return NewClient(config.RecognitionConfig{Endpoint: url, Timeout: 2 * time.Second})
}

func TestRecognizeCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s, want application/json", ct)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":["ABC 123","XYZ999"],"plate_images":["data:image/jpeg;base64,AA=="]}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL).Recognize(context.Background(), []byte{0xFF, 0xD8, 0xFF, 0xD9})
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if len(res.Texts) != 2 || res.Texts[0] != "ABC 123" {
		t.Errorf("texts = %v, want primary ABC 123", res.Texts)
	}
	if len(res.PlateImages) != 1 {
		t.Errorf("plate images = %d, want 1", len(res.PlateImages))
	}
}

func TestRecognizeEmptyIsNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text":[]}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL).Recognize(context.Background(), nil)
	if err != nil {
		t.Fatalf("empty result should not be an error: %v", err)
	}
	if len(res.Texts) != 0 {
		t.Errorf("texts = %v, want empty", res.Texts)
	}
}

func TestRecognizeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Recognize(context.Background(), nil)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestRecognizeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := newTestClient(srv.URL).Recognize(context.Background(), nil)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}
