package verify

import (
	"context"
	"crypto/sha256"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tuli_go/internal/domain"

	"go.uber.org/goleak"
)

type mapFetcher struct {
	payloads map[string][]byte
	fail     map[string]error
	block    map[string]bool
}

func (m *mapFetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	if m.block[uri] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err, ok := m.fail[uri]; ok {
		return nil, err
	}
	body, ok := m.payloads[uri]
	if !ok {
		return nil, errors.New("no such payload")
	}
	return body, nil
}

func record(content, metadata []byte) domain.MediaRecord {
	return domain.MediaRecord{
		ID:           big.NewInt(0),
		TokenURI:     "https://example.com/content",
		MetadataURI:  "https://example.com/metadata",
		ContentHash:  sha256.Sum256(content),
		MetadataHash: sha256.Sum256(metadata),
	}
}

func TestVerify(t *testing.T) {
	defer goleak.VerifyNone(t)

	content := []byte("invert")
	metadata := []byte(`{"name":"blah"}`)
	fetcher := &mapFetcher{payloads: map[string][]byte{
		"https://example.com/content":  content,
		"https://example.com/metadata": metadata,
	}}
	v := New(fetcher)

	t.Run("matching digests", func(t *testing.T) {
		ok, err := v.Verify(context.Background(), record(content, metadata))
		if err != nil {
			t.Fatalf("Verify failed: %v", err)
		}
		if !ok {
			t.Error("expected verified media")
		}
	})

	t.Run("content mismatch", func(t *testing.T) {
		ok, err := v.Verify(context.Background(), record([]byte("other"), metadata))
		if err != nil {
			t.Fatalf("Verify failed: %v", err)
		}
		if ok {
			t.Error("expected mismatch")
		}
	})

	t.Run("metadata mismatch", func(t *testing.T) {
		report, err := v.Check(context.Background(), record(content, []byte("{}")))
		if err != nil {
			t.Fatalf("Check failed: %v", err)
		}
		if !report.ContentMatches() || report.MetadataMatches() || report.Verified() {
			t.Errorf("unexpected report: %+v", report)
		}
		if string(report.Content) != "invert" {
			t.Errorf("content = %q", report.Content)
		}
	})
}

func TestVerify_FetchFailureIsNotMismatch(t *testing.T) {
	defer goleak.VerifyNone(t)

	content := []byte("invert")
	fetcher := &mapFetcher{
		payloads: map[string][]byte{"https://example.com/content": content},
		fail:     map[string]error{"https://example.com/metadata": errors.New("connection reset")},
		block:    map[string]bool{},
	}

	ok, err := New(fetcher).Verify(context.Background(), record(content, nil))
	if ok {
		t.Error("failed fetch must not verify")
	}
	var netErr *domain.NetworkError
	if !errors.As(err, &netErr) || netErr.Op != "fetch" {
		t.Fatalf("expected fetch NetworkError, got %v", err)
	}
}

func TestVerify_FailureCancelsSibling(t *testing.T) {
	defer goleak.VerifyNone(t)

	fetcher := &mapFetcher{
		fail:  map[string]error{"https://example.com/metadata": errors.New("boom")},
		block: map[string]bool{"https://example.com/content": true},
	}

	done := make(chan error, 1)
	go func() {
		_, err := New(fetcher).Verify(context.Background(), record(nil, nil))
		done <- err
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("blocked fetch was not cancelled")
	}
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte("hello"))
		case "/big":
			w.Write(make([]byte, 64))
		case "/gone":
			http.Error(w, "gone", http.StatusNotFound)
		default:
			http.Error(w, "oops", http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5*time.Second, 32)
	defer f.CloseIdleConnections()
	ctx := context.Background()

	body, err := f.Fetch(ctx, srv.URL+"/ok")
	if err != nil || string(body) != "hello" {
		t.Fatalf("Fetch = %q, %v", body, err)
	}

	tests := []struct {
		path      string
		retriable bool
	}{
		{"/big", false},
		{"/gone", false},
		{"/flaky", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := f.Fetch(ctx, srv.URL+tt.path)
			var netErr *domain.NetworkError
			if !errors.As(err, &netErr) {
				t.Fatalf("expected NetworkError, got %v", err)
			}
			if netErr.IsRetriable() != tt.retriable {
				t.Errorf("retriable = %v, want %v", netErr.IsRetriable(), tt.retriable)
			}
		})
	}

	t.Run("verify single uri", func(t *testing.T) {
		ok, err := New(f).VerifyURI(ctx, srv.URL+"/ok", sha256.Sum256([]byte("hello")))
		if err != nil || !ok {
			t.Errorf("VerifyURI = %v, %v", ok, err)
		}
	})
}
