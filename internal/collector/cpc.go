package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html/charset"
)

// ErrFetch means the source page could not be retrieved.
var ErrFetch = errors.New("fetch failure")

const (
	DefaultHistoryURL = "https://www.cpc.com.tw/historyprice.aspx?n=2890"
	DefaultUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// CPCFetcher downloads the CPC history-price page.
type CPCFetcher struct {
	URL       string
	UserAgent string
	Client    *http.Client
}

// NewCPCFetcher creates a new fetcher with optional proxy support.
func NewCPCFetcher(pageURL, userAgent, proxyURL string) *CPCFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		} else {
			log.WithError(err).Warn("ignoring invalid proxy url")
		}
	}
	if pageURL == "" {
		pageURL = DefaultHistoryURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &CPCFetcher{
		URL:       pageURL,
		UserAgent: userAgent,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *CPCFetcher) Name() string { return "cpc" }

// FetchPage returns the page body decoded to UTF-8 using the declared charset.
func (f *CPCFetcher) FetchPage(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept-Language", "zh-TW,zh;q=0.9")

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("get %s: %w: %w", f.URL, ErrFetch, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("get %s: status %d: %w", f.URL, resp.StatusCode, ErrFetch)
	}

	return readPage(resp.Body, resp.Header.Get("Content-Type"))
}

// readPage decodes r to UTF-8. Every failure wraps ErrFetch.
func readPage(r io.Reader, contentType string) (string, error) {
	body, err := charset.NewReader(r, contentType)
	if err != nil {
		return "", fmt.Errorf("decode body: %w: %w", ErrFetch, err)
	}
	content, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read body: %w: %w", ErrFetch, err)
	}
	return string(content), nil
}
