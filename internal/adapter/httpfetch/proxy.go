package httpfetch

import (
	"fmt"
	"net/http"
	"net/url"
	"sync"
)

// ProxyRotator hands out proxies round-robin, one per outgoing request.
type ProxyRotator struct {
	mu      sync.Mutex
	proxies []*url.URL
	next    int
}

// NewProxyRotator parses the proxy list. An empty list yields a rotator that
// never proxies.
func NewProxyRotator(raw []string) (*ProxyRotator, error) {
	r := &ProxyRotator{}
	for _, p := range raw {
		u, err := url.Parse(p)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid proxy %q", p)
		}
		r.proxies = append(r.proxies, u)
	}
	return r, nil
}

// Proxy matches http.Transport.Proxy.
func (r *ProxyRotator) Proxy(_ *http.Request) (*url.URL, error) {
	if r == nil || len(r.proxies) == 0 {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.proxies[r.next]
	r.next = (r.next + 1) % len(r.proxies)
	return p, nil
}

func (r *ProxyRotator) Len() int {
	if r == nil {
		return 0
	}
	return len(r.proxies)
}
