package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fr4nk3nst1ner/langsalary/internal/cache"
	"github.com/fr4nk3nst1ner/langsalary/internal/client"
	lserrors "github.com/fr4nk3nst1ner/langsalary/internal/errors"
	"github.com/fr4nk3nst1ner/langsalary/internal/metrics"
	"github.com/fr4nk3nst1ner/langsalary/internal/models"
	"github.com/fr4nk3nst1ner/langsalary/internal/telemetry"
)

const (
	// PageSize is the number of vacancies requested per page from both sources
	PageSize = 100

	DefaultPageDelay = 500 * time.Millisecond
	DefaultPageCap   = 20
)

var tracer = telemetry.GetTracer("langsalary/scraper")

// Result is what one term produced on one source
type Result struct {
	Vacancies []models.Vacancy
	// Total is the result count reported by the source, not len(Vacancies)
	Total int
	// Pages is the number of pages actually read
	Pages int
}

// Fetcher walks a source's paginated listing for a search term
type Fetcher interface {
	Source() models.Source
	Fetch(ctx context.Context, term string, area, pageCap int) (Result, error)
}

// Options are shared by both fetchers
type Options struct {
	BaseURL         string
	UserAgent       string
	PageDelay       time.Duration
	RateLimitPerSec int
	HTTPClient      *http.Client
	Cache           cache.Cache
	CacheTTL        time.Duration
	Logger          *zap.Logger
	Metrics         *metrics.Metrics
}

// pager holds the request plumbing common to both sources
type pager struct {
	source    models.Source
	baseURL   string
	headers   http.Header
	pageDelay time.Duration
	client    *http.Client
	limiter   *rate.Limiter
	cache     cache.Cache
	cacheTTL  time.Duration
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

func newPager(source models.Source, defaultURL string, opts Options) pager {
	p := pager{
		source:    source,
		baseURL:   opts.BaseURL,
		headers:   client.GetJSONHeaders(opts.UserAgent),
		pageDelay: opts.PageDelay,
		client:    opts.HTTPClient,
		limiter:   client.NewRateLimiter(opts.RateLimitPerSec),
		cache:     opts.Cache,
		cacheTTL:  opts.CacheTTL,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
	}
	if p.baseURL == "" {
		p.baseURL = defaultURL
	}
	if p.pageDelay <= 0 {
		p.pageDelay = DefaultPageDelay
	}
	if p.client == nil {
		p.client = client.CreateHTTPClient(client.DefaultTimeout)
	}
	if p.cache == nil {
		p.cache = cache.Nop{}
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	p.logger = p.logger.With(zap.String("source", string(source)))
	return p
}

// getPage returns the raw body of one page, from cache when possible.
// The pacer is only consulted for real network requests.
func (p *pager) getPage(ctx context.Context, pacer *rate.Limiter, cacheKey, pageURL string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "scraper."+string(p.source)+".page")
	defer span.End()
	span.SetAttributes(telemetry.String("http.url", pageURL))

	if body, err := p.cache.Get(ctx, cacheKey); err == nil {
		span.SetAttributes(telemetry.String("cache.result", "hit"))
		p.metrics.ObservePage(p.source, metrics.OutcomeCached)
		p.logger.Debug("cache hit", zap.String("key", cacheKey))
		return body, nil
	} else if err != cache.ErrNotFound {
		p.logger.Warn("cache error", zap.String("key", cacheKey), zap.Error(err))
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, lserrors.Unavailable("waiting for rate limiter", err)
	}
	if err := pacer.Wait(ctx); err != nil {
		return nil, lserrors.Unavailable("waiting between pages", err)
	}

	body, err := client.Get(ctx, p.client, pageURL, p.headers)
	if err != nil {
		// Error statuses often carry an explicit error payload
		if msg := apiErrorText(body); msg != "" {
			err = lserrors.API(msg, err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.metrics.ObservePage(p.source, outcomeFor(err))
		return nil, err
	}

	// decodePage reports payload errors
	if apiErrorText(body) != "" {
		return body, nil
	}
	p.metrics.ObservePage(p.source, metrics.OutcomeOK)
	if err := p.cache.Set(ctx, cacheKey, body, p.cacheTTL); err != nil {
		p.logger.Warn("failed to cache page", zap.String("key", cacheKey), zap.Error(err))
	}
	return body, nil
}

// decodePage fails with API when the payload has an error field and with
// MALFORMED_PAYLOAD when it cannot be decoded.
func (p *pager) decodePage(body []byte, v any) error {
	if msg := apiErrorText(body); msg != "" {
		err := lserrors.API(msg, nil)
		p.metrics.ObservePage(p.source, metrics.OutcomeAPI)
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		p.metrics.ObservePage(p.source, metrics.OutcomeMalformed)
		return lserrors.Malformed("decoding page", err)
	}
	return nil
}

func (p *pager) cacheKey(term string, area, page int) string {
	return fmt.Sprintf("langsalary:%s:%s:%d:%d", p.source, strings.ToLower(term), area, page)
}

func outcomeFor(err error) string {
	switch lserrors.TypeOf(err) {
	case lserrors.ErrTypeAPI:
		return metrics.OutcomeAPI
	case lserrors.ErrTypeMalformedPayload:
		return metrics.OutcomeMalformed
	default:
		return metrics.OutcomeNetwork
	}
}

// apiErrorText extracts the "error" field of a payload, or "" when there is none.
func apiErrorText(body []byte) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return ""
	}
	field := gjson.GetBytes(body, "error")
	switch {
	case !field.Exists(), field.Type == gjson.Null, field.Type == gjson.False:
		return ""
	case field.Type == gjson.String:
		return field.String()
	case field.IsObject():
		msg := field.Get("message").String()
		if msg == "" {
			msg = field.Get("description").String()
		}
		if msg != "" {
			if code := field.Get("code"); code.Exists() {
				return code.String() + ": " + msg
			}
			return msg
		}
	}
	return field.Raw
}

// malformed reports whether err is a payload decoding failure
func malformed(err error) bool {
	return lserrors.IsType(err, lserrors.ErrTypeMalformedPayload)
}

func pagesFor(total int) int {
	return (total + PageSize - 1) / PageSize
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
