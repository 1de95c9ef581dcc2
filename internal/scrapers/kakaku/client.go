// client.go contains the Fetcher: it downloads one listing page and hands
// back the parsed document, it knows nothing about the cells inside.

package kakaku

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"memband/internal/components/assert"
	"memband/internal/components/telemetry"
	"memband/lib/htmlutil"
	"memband/lib/restyutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

const (
	report_client_fetch_page = "client.fetch-page"
)

// PagePlaceholder is replaced by the page index in ClientOptions.URLTemplate.
const PagePlaceholder = "{page}"

type ClientOptions struct {
	// URLTemplate is the listing url with PagePlaceholder where the page index goes.
	URLTemplate string
	// Timeout bounds each request, 0 means no timeout.
	Timeout time.Duration
	// UserAgent is sent when non-empty.
	UserAgent string
	// RequestsPerSecond limits the request rate when positive.
	RequestsPerSecond float64
	// DumpOutput receives every request/response pair when non-nil.
	DumpOutput restyutil.InstrumentOutput
}

type Client struct {
	template string
	http     *resty.Client
	tel      telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("kakaku_scraper", tel)

	if !strings.Contains(opts.URLTemplate, PagePlaceholder) {
		return nil, fmt.Errorf("url template %q does not contain %s", opts.URLTemplate, PagePlaceholder)
	}

	httpClient := resty.New()
	httpClient.SetTimeout(opts.Timeout)
	if opts.UserAgent != "" {
		httpClient.SetHeader("user-agent", opts.UserAgent)
	}

	if opts.RequestsPerSecond > 0 {
		// burst of 1 keeps the requests evenly spaced
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel)
	restyutil.InstrumentClient(httpClient, tracer, opts.DumpOutput)

	return &Client{
		template: opts.URLTemplate,
		http:     httpClient,
		tel:      tel,
	}, nil
}

// PageURL substitutes a positive page index into the url template.
func (c *Client) PageURL(page int) (string, error) {
	if page <= 0 {
		return "", fmt.Errorf("page index must be positive, got %d", page)
	}
	return strings.ReplaceAll(c.template, PagePlaceholder, strconv.Itoa(page)), nil
}

// FetchPage downloads a listing page and parses it, decoding it according to
// its declared charset. A transport failure or non-2xx status is returned as
// a *NetworkError, nothing is retried.
func (c *Client) FetchPage(ctx context.Context, page int) (*goquery.Document, error) {
	ctx, span := tracer.Start(ctx, "client:FetchPage")
	defer span.End()

	link, err := c.PageURL(page)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("page", page), attribute.String("url", link))
	c.tel.ReportDebug(report_client_fetch_page, page, link)

	res, err := c.http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		netErr := &NetworkError{URL: link, Err: err}
		c.tel.ReportBroken(report_client_fetch_page, netErr, page)
		span.SetStatus(codes.Error, "failed to fetch")
		return nil, netErr
	}
	if !res.IsSuccess() {
		netErr := &NetworkError{URL: link, StatusCode: res.StatusCode()}
		c.tel.ReportBroken(report_client_fetch_page, netErr, page)
		span.SetStatus(codes.Error, res.Status())
		return nil, netErr
	}

	doc, err := htmlutil.ParseDocument(res.Body(), res.Header().Get("Content-Type"))
	if err != nil {
		c.tel.ReportBroken(
			report_client_fetch_page,
			fmt.Errorf("parse: %w", err),
			page,
		)
		span.SetStatus(codes.Error, "failed to parse html")
		return nil, fmt.Errorf("parse page %d: %w", page, err)
	}

	pagesFetched.Add(ctx, 1)
	return doc, nil
}
