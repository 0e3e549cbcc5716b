package httpfetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"
	"time"
)

func newTestClient() *Client {
	return NewClient(Options{AllowPrivateNetworks: true})
}

func TestClient_FetchOK(t *testing.T) {
	var gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><title>Hi</title></html>"))
	}))
	defer server.Close()

	res := newTestClient().Fetch(context.Background(), server.URL+"/page", time.Second)

	if !res.OK {
		t.Fatalf("OK = false, error %q", res.Error)
	}
	if res.Status() != http.StatusOK {
		t.Errorf("status = %d", res.Status())
	}
	if res.FinalURL != server.URL+"/page" {
		t.Errorf("FinalURL = %q", res.FinalURL)
	}
	if res.HTML != "<html><title>Hi</title></html>" {
		t.Errorf("HTML = %q", res.HTML)
	}
	if gotUA != DefaultUserAgent {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if !strings.Contains(gotAccept, "text/html") {
		t.Errorf("Accept = %q", gotAccept)
	}
}

func TestClient_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("moved here"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	res := newTestClient().Fetch(context.Background(), server.URL+"/old", time.Second)

	if !res.OK || res.FinalURL != server.URL+"/new" {
		t.Errorf("result = %+v, want final URL %s/new", res, server.URL)
	}
}

func TestClient_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	res := newTestClient().Fetch(context.Background(), server.URL+"/missing", time.Second)

	if res.OK {
		t.Fatal("OK = true for 404")
	}
	if res.StatusCode == nil || *res.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %v, want 404", res.StatusCode)
	}
	want := "404 Not Found for url: " + server.URL + "/missing"
	if res.Error != want {
		t.Errorf("Error = %q, want %q", res.Error, want)
	}
	if res.Timeout {
		t.Error("Timeout = true for 404")
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	res := newTestClient().Fetch(context.Background(), server.URL, 50*time.Millisecond)

	if res.OK {
		t.Fatal("OK = true for a hung server")
	}
	if res.StatusCode != nil {
		t.Errorf("StatusCode = %v, want nil", *res.StatusCode)
	}
	if !res.Timeout {
		t.Errorf("Timeout = false, error %q", res.Error)
	}
}

func TestClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	res := newTestClient().Fetch(context.Background(), addr, time.Second)

	if res.OK || res.StatusCode != nil || res.Error == "" {
		t.Errorf("result = %+v, want transport failure", res)
	}
	if res.FinalURL != addr {
		t.Errorf("FinalURL = %q, want %q", res.FinalURL, addr)
	}
}

func TestClient_BlocksPrivateNetworks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("secret"))
	}))
	defer server.Close()

	res := NewClient(Options{}).Fetch(context.Background(), server.URL, time.Second)

	if res.OK {
		t.Fatal("loopback fetch allowed without AllowPrivateNetworks")
	}
	if !strings.Contains(res.Error, "private/reserved") {
		t.Errorf("Error = %q", res.Error)
	}
}

func TestClient_DecodesCharset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.Write([]byte("<p>caf\xe9</p>"))
	}))
	defer server.Close()

	res := newTestClient().Fetch(context.Background(), server.URL, time.Second)

	if res.HTML != "<p>café</p>" {
		t.Errorf("HTML = %q, want utf-8 decoded", res.HTML)
	}
}

func TestClient_XMLBodyUnchanged(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><urlset>`)
	for i := 0; i < 40; i++ {
		b.WriteString("<url><loc>https://example.com/a</loc></url>")
	}
	b.WriteString("<url><loc>https://example.com/café</loc></url></urlset>")
	body := b.String()

	for _, contentType := range []string{"application/xml", "text/xml; charset=utf-8", ""} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header()["Content-Type"] = []string{contentType}
			w.Write([]byte(body))
		}))

		res := newTestClient().Fetch(context.Background(), server.URL, time.Second)
		server.Close()

		if res.HTML != body {
			t.Errorf("Content-Type %q: body was re-encoded", contentType)
		}
	}
}

func TestGuardedProxy(t *testing.T) {
	rotator, err := NewProxyRotator([]string{"http://proxy.internal:3128"})
	if err != nil {
		t.Fatalf("NewProxyRotator: %v", err)
	}

	tests := []struct {
		name         string
		target       string
		allowPrivate bool
		wantBlocked  bool
	}{
		{name: "loopback target", target: "http://127.0.0.1:8080/admin", wantBlocked: true},
		{name: "metadata target", target: "http://169.254.169.254/latest", wantBlocked: true},
		{name: "ipv6 loopback", target: "http://[::1]/", wantBlocked: true},
		{name: "public target", target: "http://93.184.216.34/"},
		{name: "private allowed", target: "http://10.0.0.5/", allowPrivate: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			u, err := guardedProxy(rotator, tt.allowPrivate)(req)
			if tt.wantBlocked {
				if !errors.Is(err, errBlockedAddress) {
					t.Errorf("err = %v, want errBlockedAddress", err)
				}
				return
			}
			if err != nil || u == nil || u.Host != "proxy.internal:3128" {
				t.Errorf("proxy = %v, %v", u, err)
			}
		})
	}
}

func TestIsBlockedIP(t *testing.T) {
	tests := map[string]bool{
		"127.0.0.1":        true,
		"10.1.2.3":         true,
		"192.168.0.10":     true,
		"169.254.169.254":  true,
		"100.64.0.1":       true,
		"::ffff:127.0.0.1": true,
		"::1":              true,
		"8.8.8.8":          false,
		"93.184.216.34":    false,
	}
	for ip, want := range tests {
		if got := isBlockedIP(netip.MustParseAddr(ip)); got != want {
			t.Errorf("isBlockedIP(%s) = %v, want %v", ip, got, want)
		}
	}
}

func TestProxyRotator(t *testing.T) {
	r, err := NewProxyRotator([]string{"http://a:8000", "http://b:8000"})
	if err != nil {
		t.Fatalf("NewProxyRotator: %v", err)
	}

	var hosts []string
	for i := 0; i < 3; i++ {
		u, _ := r.Proxy(nil)
		hosts = append(hosts, u.Host)
	}
	if strings.Join(hosts, ",") != "a:8000,b:8000,a:8000" {
		t.Errorf("rotation = %v", hosts)
	}

	if _, err := NewProxyRotator([]string{"not a proxy"}); err == nil {
		t.Error("expected error for invalid proxy")
	}

	var empty *ProxyRotator
	if u, err := empty.Proxy(nil); u != nil || err != nil {
		t.Errorf("nil rotator = %v, %v", u, err)
	}
}
