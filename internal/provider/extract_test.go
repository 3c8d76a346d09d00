package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gangster26/airflow-stock-dag/internal/config"
	"github.com/Gangster26/airflow-stock-dag/internal/connector"
)

func TestExtract(t *testing.T) {
	var called int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called++
		if r.URL.Path != "/query" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("function") != "TIME_SERIES_DAILY" || q.Get("symbol") != "NFLX" || q.Get("apikey") != "demo" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"Meta Data":{"2. Symbol":"NFLX"},"Time Series (Daily)":{"2024-03-01":{"1. open":"10"}}}`))
	}))
	defer srv.Close()

	rest := connector.NewREST(&config.REST{ReqTimeoutSec: 5})
	raw, err := Extract(context.Background(), rest, srv.URL+"/", "NFLX", "demo")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if called != 1 {
		t.Errorf("server called %d times, want 1", called)
	}
	if _, ok := raw[DailySeriesKey]; !ok {
		t.Errorf("series missing from raw response: %v", raw)
	}
	if _, ok := raw["Meta Data"]; !ok {
		t.Errorf("body should be returned as is: %v", raw)
	}
}

func TestExtractAdvisoryReturnedAsIs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Error Message":"Invalid API call."}`))
	}))
	defer srv.Close()

	raw, err := Extract(context.Background(), connector.NewREST(&config.REST{}), srv.URL+"/", "NOPE", "demo")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if raw["Error Message"] != "Invalid API call." {
		t.Errorf("raw = %v", raw)
	}
}

func TestExtractErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("symbol") {
		case "DOWN":
			http.Error(w, "maintenance", http.StatusServiceUnavailable)
		case "HTML":
			w.Write([]byte(`<html>oops</html>`))
		case "ARRAY":
			w.Write([]byte(`[1, 2]`))
		}
	}))
	defer srv.Close()
	rest := connector.NewREST(&config.REST{})

	for _, symbol := range []string{"DOWN", "HTML", "ARRAY"} {
		if _, err := Extract(context.Background(), rest, srv.URL+"/", symbol, "demo"); err == nil {
			t.Errorf("%s: expected error", symbol)
		}
	}

	if _, err := Extract(context.Background(), rest, srv.URL+"/", " ", "demo"); err == nil {
		t.Error("expected error for empty symbol")
	}

	// Closed server gives a transport error.
	url := srv.URL + "/"
	srv.Close()
	if _, err := Extract(context.Background(), rest, url, "NFLX", "demo"); err == nil {
		t.Error("expected transport error")
	}
}
