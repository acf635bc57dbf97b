package probe

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// maxContentBytes caps how much of a response body is read for content matching.
const maxContentBytes = 1 << 20

// Doer issues HTTP requests. The network client is an external collaborator
// and is injected; http.Client satisfies this.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientFactory builds the client used to probe a given check, honoring its
// redirect and TLS policy.
type ClientFactory func(c *Check) Doer

// defaultClientFactory builds a plain http.Client per check policy.
func defaultClientFactory(c *Check) Doer {
	client := &http.Client{}
	if !c.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	if c.SkipTLSVerify {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return client
}

// Prober issues uptime probes. Probe failures are recorded as data on the
// Result, never returned as errors.
type Prober struct {
	factory ClientFactory
	logger  *zap.SugaredLogger
	sem     *semaphore.Weighted
}

// NewProber creates a prober. A nil factory uses a plain HTTP client built
// from each check's redirect/TLS policy. maxConcurrent bounds how many
// region probes run at once within a single tick.
func NewProber(logger *zap.SugaredLogger, factory ClientFactory, maxConcurrent int64) *Prober {
	if factory == nil {
		factory = defaultClientFactory
	}
	if maxConcurrent < 1 {
		maxConcurrent = 4
	}
	return &Prober{
		factory: factory,
		logger:  logger,
		sem:     semaphore.NewWeighted(maxConcurrent),
	}
}

// Run probes every configured region of a check once and returns one Result
// per region, in region order. Run is total: transport errors and timeouts
// become failed results with the error message recorded.
func (p *Prober) Run(ctx context.Context, c *Check) []Result {
	regions := c.EffectiveRegions()
	results := make([]Result, len(regions))
	client := p.factory(c)

	var wg sync.WaitGroup
	for i, region := range regions {
		if err := p.sem.Acquire(ctx, 1); err != nil {
			// Cancelled mid-tick: record the remaining regions as failures.
			results[i] = failedResult(c, region, err.Error())
			continue
		}

		wg.Add(1)
		go func(i int, region string) {
			defer wg.Done()
			defer p.sem.Release(1)
			results[i] = p.probeRegion(ctx, client, c, region)
		}(i, region)
	}
	wg.Wait()

	return results
}

// probeRegion issues a single probe with the check's hard timeout. Success
// requires an accepted status code and, when configured, the expected
// content substring.
func (p *Prober) probeRegion(ctx context.Context, client Doer, c *Check, region string) Result {
	timeout := c.TimeoutDuration()
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	method := c.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if c.Body != "" {
		body = strings.NewReader(c.Body)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, c.URL, body)
	if err != nil {
		return failedResult(c, region, err.Error())
	}
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := client.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		p.logger.Debugw("probe failed", "check", c.ID, "region", region, "error", err)
		// Timeouts and transport errors count as the full configured timeout.
		return failedResult(c, region, err.Error())
	}
	defer resp.Body.Close()

	result := Result{
		ID:           uuid.NewString(),
		CheckID:      c.ID,
		Timestamp:    time.Now().UTC(),
		Region:       region,
		ResponseTime: elapsed,
		StatusCode:   resp.StatusCode,
	}

	if resp.TLS != nil {
		valid := len(resp.TLS.PeerCertificates) > 0
		result.TLSValid = &valid
	}

	statusOK := c.acceptsStatus(resp.StatusCode)
	contentOK := true
	if c.ExpectedContent != "" {
		data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxContentBytes))
		if readErr != nil {
			contentOK = false
			result.Error = readErr.Error()
		} else {
			contentOK = strings.Contains(string(data), c.ExpectedContent)
		}
		result.ContentMatch = &contentOK
	}

	result.Success = statusOK && contentOK
	if !result.Success && result.Error == "" {
		if !statusOK {
			result.Error = "unexpected status code"
		} else {
			result.Error = "expected content not found"
		}
	}

	return result
}

func failedResult(c *Check, region, msg string) Result {
	return Result{
		ID:           uuid.NewString(),
		CheckID:      c.ID,
		Timestamp:    time.Now().UTC(),
		Region:       region,
		Success:      false,
		ResponseTime: c.TimeoutDuration(),
		Error:        msg,
	}
}
