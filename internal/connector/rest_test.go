package connector

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/Gangster26/airflow-stock-dag/internal/config"
)

func TestNewREST(t *testing.T) {
	def := http.DefaultTransport.(*http.Transport)
	tests := []struct {
		name           string
		cfg            config.REST
		timeout        time.Duration
		maxIdle        int
		maxIdlePerHost int
	}{
		{"transport defaults", config.REST{}, 0, def.MaxIdleConns, def.MaxIdleConnsPerHost},
		{"configured", config.REST{ReqTimeoutSec: 30, MaxIdleConns: 10, MaxIdleConnsPerHost: 2}, 30 * time.Second, 10, 2},
		{"timeout only", config.REST{ReqTimeoutSec: 5}, 5 * time.Second, def.MaxIdleConns, def.MaxIdleConnsPerHost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rest := NewREST(&tt.cfg)
			if rest.HTTPClient.Timeout != tt.timeout {
				t.Errorf("timeout = %v, want %v", rest.HTTPClient.Timeout, tt.timeout)
			}
			tr, ok := rest.HTTPClient.Transport.(*http.Transport)
			if !ok {
				t.Fatalf("transport is %T", rest.HTTPClient.Transport)
			}
			if tr == def {
				t.Error("default transport should be cloned, not shared")
			}
			if tr.MaxIdleConns != tt.maxIdle {
				t.Errorf("max idle conns = %d, want %d", tr.MaxIdleConns, tt.maxIdle)
			}
			if tr.MaxIdleConnsPerHost != tt.maxIdlePerHost {
				t.Errorf("max idle conns per host = %d, want %d", tr.MaxIdleConnsPerHost, tt.maxIdlePerHost)
			}
		})
	}
}

func TestRequest(t *testing.T) {
	rest := NewREST(&config.REST{})
	req, err := rest.Request(context.Background(), "https://www.alphavantage.co/query")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if req.Method != http.MethodGet || req.Header.Get("Accept") != "application/json" {
		t.Errorf("request = %s %v", req.Method, req.Header)
	}
	if _, err = rest.Request(context.Background(), "://bad"); err == nil {
		t.Error("expected error for bad url")
	}
}
