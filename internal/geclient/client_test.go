package geclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const mappingJSON = `[
	{"id": 536, "name": "Dragon bones"},
	{"id": 4151, "name": "Abyssal whip"},
	{"id": 11832, "name": "Bandos chestplate"}
]`

const latestJSON = `{"data": {
	"536":  {"high": 2900, "highTime": 1700000000, "low": 2850, "lowTime": 1700000100},
	"4151": {"high": null, "highTime": 0, "low": 1480000, "lowTime": 1700000200}
}}`

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/mapping", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("request missing User-Agent header")
		}
		w.Write([]byte(mappingJSON))
	})
	mux.HandleFunc("/latest", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(latestJSON))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestResolveID_CaseInsensitiveAndStable(t *testing.T) {
	srv := testServer(t)
	c := New(srv.URL, "gewatch test", time.Second)

	for _, name := range []string{"Dragon bones", "dragon bones", "DRAGON BONES"} {
		id, err := c.ResolveID(context.Background(), name)
		if err != nil {
			t.Fatalf("resolve %q: %v", name, err)
		}
		if id != 536 {
			t.Errorf("resolve %q = %d, want 536", name, id)
		}
	}

	// Repeated calls within a session return the same id.
	for i := 0; i < 3; i++ {
		id, err := c.ResolveID(context.Background(), "Abyssal whip")
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if id != 4151 {
			t.Errorf("call %d: id = %d, want 4151", i, id)
		}
	}
}

func TestResolveID_UnknownName(t *testing.T) {
	srv := testServer(t)
	c := New(srv.URL, "gewatch test", time.Second)

	_, err := c.ResolveID(context.Background(), "Rubber chicken of doom")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveID_ServerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	c := New(srv.URL, "gewatch test", time.Second)

	_, err := c.ResolveID(context.Background(), "Dragon bones")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on server failure, got %v", err)
	}
}

func TestFetchLatest_OmitsMissingAndNullSides(t *testing.T) {
	srv := testServer(t)
	c := New(srv.URL, "gewatch test", time.Second)

	quotes, err := c.FetchLatest(context.Background(), []int{536, 4151, 11832})
	if err != nil {
		t.Fatalf("fetch latest: %v", err)
	}
	if len(quotes) != 1 {
		t.Fatalf("expected 1 quote, got %d", len(quotes))
	}
	q, ok := quotes[536]
	if !ok {
		t.Fatal("expected quote for id 536")
	}
	if q.High != 2900 || q.Low != 2850 {
		t.Errorf("quote = (%.0f, %.0f), want (2900, 2850)", q.High, q.Low)
	}
	if _, ok := quotes[4151]; ok {
		t.Error("id with a null side should be omitted")
	}
	if _, ok := quotes[11832]; ok {
		t.Error("id absent from response should be omitted")
	}
}

func TestFetchLatest_ServerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	c := New(srv.URL, "gewatch test", time.Second)

	if _, err := c.FetchLatest(context.Background(), []int{536}); err == nil {
		t.Fatal("expected error on server failure")
	}
}
