// Package uptime probes URLs and classifies the results, with an optional
// model pass that spots "200 but actually down" maintenance pages.
package uptime

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sitescout/sitescout/internal/config"
	"github.com/sitescout/sitescout/internal/llm"
	"github.com/sitescout/sitescout/internal/model"
)

// outageSignatures are substrings that make a 200 response suspicious
// enough to send to the model for classification.
var outageSignatures = []string{
	"scheduled maintenance",
	"we'll be back",
	"service unavailable",
	"temporarily offline",
	"experiencing issues",
	"under maintenance",
	"status page",
}

// Checker probes URLs sequentially under a rate limit.
type Checker struct {
	cfg     config.UptimeConfig
	client  *resty.Client
	limiter *rate.Limiter
	engine  *llm.Engine // nil disables smart detection
}

// NewChecker creates a Checker. engine may be nil; smart outage detection
// is then skipped entirely.
func NewChecker(cfg config.UptimeConfig, engine *llm.Engine) *Checker {
	client := resty.New().
		SetTimeout(time.Duration(cfg.TimeoutSecs) * time.Second).
		SetRetryCount(cfg.RetryCount).
		SetHeader("User-Agent", "sitescout-uptime/1.0")

	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 5
	}

	return &Checker{
		cfg:     cfg,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		engine:  engine,
	}
}

const outageSystemPrompt = `You decide whether a web page body indicates the service is actually down (outage, maintenance, error page) even though it returned HTTP 200. First line: yes if the service is down, no if it is serving normally.`

// Check probes a single URL.
func (c *Checker) Check(ctx context.Context, url string, smart bool) model.Check {
	if err := c.limiter.Wait(ctx); err != nil {
		return model.Check{URL: url, Status: model.CheckStatusDown, Error: err.Error(), CheckedAt: time.Now().UTC()}
	}

	start := time.Now()
	resp, err := c.client.R().SetContext(ctx).Get(url)
	latency := time.Since(start)

	check := model.Check{
		URL:       url,
		LatencyMS: latency.Milliseconds(),
		CheckedAt: time.Now().UTC(),
	}

	if err != nil {
		check.Status = model.CheckStatusDown
		check.Error = err.Error()
		return check
	}

	check.StatusCode = resp.StatusCode()

	switch {
	case resp.StatusCode() >= 500:
		check.Status = model.CheckStatusDown
		check.Error = fmt.Sprintf("status %d", resp.StatusCode())
	case resp.StatusCode() >= 400:
		check.Status = model.CheckStatusDegraded
		check.Error = fmt.Sprintf("status %d", resp.StatusCode())
	case latency.Milliseconds() > c.cfg.DegradedMS && c.cfg.DegradedMS > 0:
		check.Status = model.CheckStatusDegraded
	default:
		check.Status = model.CheckStatusUp
	}

	if smart && check.Status == model.CheckStatusUp {
		if down, reason := c.smartOutage(ctx, url, resp.String()); down {
			check.Status = model.CheckStatusDown
			check.Error = "outage page: " + reason
		}
	}

	return check
}

// CheckAll probes all URLs sequentially (the limiter paces the requests).
func (c *Checker) CheckAll(ctx context.Context, urls []string, smart bool) []model.Check {
	checks := make([]model.Check, 0, len(urls))
	for _, u := range urls {
		check := c.Check(ctx, u, smart)
		zap.L().Info("uptime: checked",
			zap.String("url", u),
			zap.String("status", string(check.Status)),
			zap.Int64("latency_ms", check.LatencyMS),
		)
		checks = append(checks, check)
	}
	return checks
}

// smartOutage returns true when a 200 body looks like an outage page and
// the model confirms. Healthy is the default on any failure.
func (c *Checker) smartOutage(ctx context.Context, url, body string) (bool, string) {
	if c.engine == nil {
		return false, ""
	}

	lower := strings.ToLower(body)
	suspicious := false
	for _, sig := range outageSignatures {
		if strings.Contains(lower, sig) {
			suspicious = true
			break
		}
	}
	if !suspicious {
		return false, ""
	}

	maxLen := c.cfg.SmartBodyMaxLen
	if maxLen <= 0 {
		maxLen = 4000
	}
	if len(body) > maxLen {
		body = body[:maxLen]
	}

	down, reason, err := c.engine.YesNo(ctx, outageSystemPrompt,
		fmt.Sprintf("URL: %s\n\nPage body:\n%s", url, body), false)
	if err != nil {
		zap.L().Warn("uptime: smart detection failed", zap.String("url", url), zap.Error(err))
		return false, ""
	}
	return down, reason
}
