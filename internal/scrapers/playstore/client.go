// client.go contains the logic for fetching the developer page itself, it knows nothing about
// how the catalog is embedded in the page.

package playstore

import (
	"appdeck/internal/components/assert"
	"appdeck/internal/components/telemetry"
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

var (
	// ErrRequestTimeout is returned when the page could not be fetched within the request timeout.
	ErrRequestTimeout = errors.New("request timed out")
	// ErrNetworkUnavailable is returned when the page could not be fetched for any other
	// transport level reason, including a non 2xx response.
	ErrNetworkUnavailable = errors.New("network unavailable")
)

const (
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
	DefaultAcceptLanguage = "en-US,en;q=0.9"
	DefaultTimeout        = 15 * time.Second
)

// PageRequest describes a single fetch of a page.
type PageRequest struct {
	Url     string
	Headers map[string]string
	Timeout time.Duration
}

// NewPageRequest builds the request for a developer page with the headers the page
// expects from a browser.
func NewPageRequest(pageUrl, userAgent, acceptLanguage string, timeout time.Duration) PageRequest {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if acceptLanguage == "" {
		acceptLanguage = DefaultAcceptLanguage
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return PageRequest{
		Url: pageUrl,
		Headers: map[string]string{
			"User-Agent":      userAgent,
			"Accept-Language": acceptLanguage,
		},
		Timeout: timeout,
	}
}

// DeveloperPageUrl returns the url of the developer page listing every app published by `developerId`.
func DeveloperPageUrl(developerId, language, country string) string {
	query := url.Values{}
	query.Set("id", developerId)
	if language != "" {
		query.Set("hl", language)
	}
	if country != "" {
		query.Set("gl", country)
	}
	return "https://play.google.com/store/apps/developer?" + query.Encode()
}

type ClientOptions struct {
	// RequestsPerSecond limits the rate of requests, 0 means no limit.
	RequestsPerSecond float64
	// BypassCloudflare wraps the transport so that requests look like they come from a browser.
	BypassCloudflare bool
	// Output is where full HTTP exchanges are written to, it can be nil.
	Output telemetry.InstrumentOutput
}

// Client fetches raw pages, it never retries.
type Client struct {
	http *resty.Client
}

func NewClient(opts ClientOptions, tel telemetry.API) *Client {
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("playstore", tel)

	httpClient := resty.New()
	if opts.BypassCloudflare {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	if opts.RequestsPerSecond > 0 {
		// max burst of 1 so that requests are spread evenly
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel, opts.Output)

	return &Client{
		http: httpClient,
	}
}

// Fetch returns the body of the page. Failures wrap either ErrRequestTimeout or
// ErrNetworkUnavailable, unless ctx itself was cancelled, in which case ctx.Err() is
// returned. Reporting failures is left to the caller.
func (c *Client) Fetch(ctx context.Context, req PageRequest) (string, error) {
	reqCtx := ctx
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	res, err := c.http.R().
		SetContext(reqCtx).
		SetHeaders(req.Headers).
		Get(req.Url)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if isTimeout(err) || errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("fetch %s: %w: %w", req.Url, ErrRequestTimeout, err)
		} else {
			err = fmt.Errorf("fetch %s: %w: %w", req.Url, ErrNetworkUnavailable, err)
		}
		return "", err
	}

	if !res.IsSuccess() {
		err := fmt.Errorf(
			"fetch %s: %w: unexpected status %s",
			req.Url, ErrNetworkUnavailable, res.Status(),
		)
		return "", err
	}

	return res.String(), nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
