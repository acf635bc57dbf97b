package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func testCheck(url string) *Check {
	return &Check{
		ID:       "web",
		Name:     "Web frontend",
		URL:      url,
		Interval: "30s",
		Timeout:  "1s",
		Enabled:  true,
	}
}

func testProber() *Prober {
	return NewProber(zap.NewNop().Sugar(), nil, 4)
}

func TestProbeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("service healthy"))
	}))
	defer srv.Close()

	results := testProber().Run(context.Background(), testCheck(srv.URL))

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if !r.Success {
		t.Errorf("expected success, got failure: %s", r.Error)
	}
	if r.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", r.StatusCode)
	}
	if r.CheckID != "web" {
		t.Errorf("expected check id web, got %s", r.CheckID)
	}
	if r.Region != "default" {
		t.Errorf("expected default region, got %s", r.Region)
	}
	if r.ResponseTime <= 0 {
		t.Error("expected positive response time")
	}
}

func TestProbeStatusMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	check := testCheck(srv.URL)
	check.AcceptedCodes = []int{200, 204}

	results := testProber().Run(context.Background(), check)

	if results[0].Success {
		t.Error("expected failure for unaccepted status code")
	}
	if results[0].StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", results[0].StatusCode)
	}
}

func TestProbeContentMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"degraded"}`))
	}))
	defer srv.Close()

	check := testCheck(srv.URL)
	check.ExpectedContent = `"status":"ok"`

	results := testProber().Run(context.Background(), check)

	r := results[0]
	if r.Success {
		t.Error("expected failure when expected content is missing")
	}
	if r.ContentMatch == nil || *r.ContentMatch {
		t.Error("expected content match flag to be false")
	}

	// Success path: substring present
	check.ExpectedContent = `"status":"degraded"`
	results = testProber().Run(context.Background(), check)
	r = results[0]
	if !r.Success {
		t.Errorf("expected success, got failure: %s", r.Error)
	}
	if r.ContentMatch == nil || !*r.ContentMatch {
		t.Error("expected content match flag to be true")
	}
}

func TestProbeTimeoutRecordedAsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	check := testCheck(srv.URL)
	check.Timeout = "" // exercise the default path via a short explicit one
	check.Timeout = "1s"
	check.URL = "http://127.0.0.1:1" // nothing listening

	results := testProber().Run(context.Background(), check)

	r := results[0]
	if r.Success {
		t.Error("expected transport failure")
	}
	if r.Error == "" {
		t.Error("expected error message to be recorded")
	}
	if r.ResponseTime != check.TimeoutDuration() {
		t.Errorf("expected response time pinned to timeout %v, got %v", check.TimeoutDuration(), r.ResponseTime)
	}
}

func TestProbeMultipleRegions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	check := testCheck(srv.URL)
	check.Regions = []string{"us-east", "eu-west", "ap-south"}

	results := testProber().Run(context.Background(), check)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, region := range check.Regions {
		if results[i].Region != region {
			t.Errorf("expected region %s at index %d, got %s", region, i, results[i].Region)
		}
		if !results[i].Success {
			t.Errorf("expected success for region %s", region)
		}
	}
}

func TestCheckValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Check)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Check) {}},
		{name: "missing id", mutate: func(c *Check) { c.ID = "" }, wantErr: true},
		{name: "missing url", mutate: func(c *Check) { c.URL = "" }, wantErr: true},
		{name: "missing interval", mutate: func(c *Check) { c.Interval = "" }, wantErr: true},
		{name: "bad interval", mutate: func(c *Check) { c.Interval = "fast" }, wantErr: true},
		{name: "bad timeout", mutate: func(c *Check) { c.Timeout = "10x" }, wantErr: true},
		{name: "bad status code", mutate: func(c *Check) { c.AcceptedCodes = []int{999} }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testCheck("http://example.com")
			tt.mutate(c)

			err := c.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
