package artifact_source

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"
)

const HttpSourceIdentifier = "http"

// HttpSource downloads artifacts over http and https
type HttpSource struct {
	connectTimeout time.Duration
	readTimeout    time.Duration

	client     *http.Client
	clientOnce sync.Once
}

func NewHttpSource(cfg *FetchConfig) Source {
	return &HttpSource{
		connectTimeout: cfg.GetConnectTimeout(),
		readTimeout:    cfg.GetReadTimeout(),
	}
}

func (s *HttpSource) Identifier() string {
	return HttpSourceIdentifier
}

func (s *HttpSource) Schemes() []string {
	return []string{"http", "https"}
}

func (s *HttpSource) Download(ctx context.Context, u *url.URL, localPath string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.getClient().Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("unexpected response status %s", resp.Status)
	}

	return writeFile(ctx, localPath, resp.Body)
}

func (s *HttpSource) Close() error {
	if s.client != nil {
		s.client.CloseIdleConnections()
	}
	return nil
}

func (s *HttpSource) getClient() *http.Client {
	s.clientOnce.Do(func() {
		s.client = newHttpClient(s.connectTimeout, s.readTimeout)
	})
	return s.client
}

func newHttpClient(connectTimeout, readTimeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           cachedDialContext(dialer, readTimeout),
		TLSHandshakeTimeout:   connectTimeout,
		ResponseHeaderTimeout: readTimeout,
		MaxIdleConnsPerHost:   readEnvVarToInt("TAILPIPE_EXTRACTOR_HTTP_MAX_IDLE_CONNS_PER_HOST", 4),
		IdleConnTimeout:       90 * time.Second,
	}
	return &http.Client{Transport: transport}
}
