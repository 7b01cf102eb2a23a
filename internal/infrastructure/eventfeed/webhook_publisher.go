// Package eventfeed delivers settlement events to downstream consumers
// over a webhook, batched per settlement run.
package eventfeed

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"

	"github.com/riskibarqy/prediction-league/internal/domain/settlement"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/platform/resilience"
)

type WebhookPublisherConfig struct {
	TargetURL string
	AuthToken string
	Timeout   time.Duration
	Breaker   resilience.CircuitBreakerConfig
}

// WebhookPublisher posts settlement event batches as JSON. Delivery is
// best effort: settlement completes whether or not the feed is reachable,
// and the circuit breaker keeps a dead consumer from slowing runs down.
type WebhookPublisher struct {
	client    *fasthttp.Client
	targetURL string
	authToken string
	timeout   time.Duration
	breaker   *resilience.CircuitBreaker
	logger    *logging.Logger
}

func NewWebhookPublisher(cfg WebhookPublisherConfig, logger *logging.Logger) (*WebhookPublisher, error) {
	target, err := validateHTTPURL(cfg.TargetURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid event feed target url")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.Breaker)

	return &WebhookPublisher{
		client: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		targetURL: target,
		authToken: strings.TrimSpace(cfg.AuthToken),
		timeout:   timeout,
		breaker:   resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		logger:    logger,
	}, nil
}

type eventBatchPayload struct {
	Events []settlement.Event `json:"events"`
	SentAt time.Time          `json:"sentAt"`
}

func (p *WebhookPublisher) PublishBatch(ctx context.Context, events []settlement.Event) error {
	if len(events) == 0 {
		return nil
	}
	if err := p.breaker.Allow(); err != nil {
		return crerr.Wrap(err, "event feed circuit open")
	}

	body, err := sonic.Marshal(eventBatchPayload{Events: events, SentAt: time.Now().UTC()})
	if err != nil {
		return crerr.Wrap(err, "marshal event batch")
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	_, _ = buf.Write(body)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.SetRequestURI(p.targetURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if p.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+p.authToken)
	}
	req.SetBody(buf.Bytes())

	if err := p.client.DoTimeout(req, resp, p.timeout); err != nil {
		p.breaker.RecordFailure()
		return crerr.Wrapf(err, "post event batch url=%s count=%d", p.targetURL, len(events))
	}
	if resp.StatusCode()/100 != 2 {
		p.breaker.RecordFailure()
		return crerr.Newf("post event batch url=%s status=%d body=%s",
			p.targetURL, resp.StatusCode(), truncateForLog(string(resp.Body()), 1024))
	}

	p.breaker.RecordSuccess()
	p.logger.InfoContext(ctx, "settlement event batch published", "count", len(events), "url", p.targetURL)
	return nil
}

func validateHTTPURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}
	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}
	return candidate, nil
}

func truncateForLog(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	return value[:max] + "...(truncated)"
}
