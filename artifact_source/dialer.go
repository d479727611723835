package artifact_source

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/rs/dnscache"
	"golang.org/x/sync/semaphore"
)

var (
	dnsResolver     = &dnscache.Resolver{}
	dnsRefreshStart sync.Once
	// limit the number of parallel DNS lookups
	dnsLookupSem = semaphore.NewWeighted(int64(readEnvVarToInt("TAILPIPE_EXTRACTOR_DNS_LOOKUP_MAX_PARALLEL", 25)))
)

// resolver returns the shared DNS cache, starting the refresh loop on first use
func resolver() *dnscache.Resolver {
	dnsRefreshStart.Do(func() {
		// unused entries are removed and used entries re-looked up at this interval
		refreshSecs := readEnvVarToInt("TAILPIPE_EXTRACTOR_DNS_CACHE_REFRESH_INTERVAL_SECS", 300)
		if refreshSecs <= 0 {
			return
		}
		go func() {
			t := time.NewTicker(time.Duration(refreshSecs) * time.Second)
			defer t.Stop()
			for range t.C {
				dnsResolver.Refresh(true)
			}
		}()
	})
	return dnsResolver
}

// cachedDialContext returns a DialContext function which resolves hosts through the shared DNS cache
// if readTimeout is non-zero, a read deadline is set on the connection before every read
func cachedDialContext(dialer *net.Dialer, readTimeout time.Duration) func(ctx context.Context, network, addr string) (net.Conn, error) {
	return func(ctx context.Context, network string, addr string) (conn net.Conn, err error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}

		if err := dnsLookupSem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		ips, err := resolver().LookupHost(ctx, host)
		dnsLookupSem.Release(1)
		if err != nil {
			return nil, err
		}
		if len(ips) == 0 {
			return nil, fmt.Errorf("no addresses found for %s", host)
		}

		// try each address until one connects
		for _, ip := range ips {
			conn, err = dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
			if err == nil {
				break
			}
		}
		if err != nil {
			return nil, err
		}
		if readTimeout > 0 {
			conn = &readTimeoutConn{Conn: conn, timeout: readTimeout}
		}
		return conn, nil
	}
}

// readTimeoutConn fails a read which receives no data within timeout
type readTimeoutConn struct {
	net.Conn
	timeout time.Duration
}

func (c *readTimeoutConn) Read(b []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(b)
}

// helper function for integer based environment variables
func readEnvVarToInt(name string, defaultVal int) int {
	val := defaultVal
	envValue := os.Getenv(name)
	if envValue != "" {
		i, err := strconv.Atoi(envValue)
		if err == nil {
			val = i
		}
	}
	return val
}
