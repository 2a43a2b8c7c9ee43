package blockchain

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
)

// Transport is the wire used to reach a JSON-RPC node
type Transport string

const (
	TransportHTTP      Transport = "http"
	TransportWebsocket Transport = "websocket"
)

// Provider opens JSON-RPC connections to a node over a specific transport
type Provider interface {
	Transport() Transport
	URL() string
	Dial(ctx context.Context) (*rpc.Client, error)
}

var (
	dialWebsocket = rpc.DialWebsocket
	dialHTTP      = func(ctx context.Context, url string, client *http.Client) (*rpc.Client, error) {
		return rpc.DialOptions(ctx, url, rpc.WithHTTPClient(client))
	}
)

// GetProvider picks the transport from the URL scheme: ws:// and wss:// get a
// websocket provider, everything else goes over HTTP.
func GetProvider(url string) Provider {
	url = strings.TrimSpace(url)
	lower := strings.ToLower(url)
	if strings.HasPrefix(lower, "ws://") || strings.HasPrefix(lower, "wss://") {
		return &WebsocketProvider{url: url}
	}
	return &HTTPProvider{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// HTTPProvider dials nodes over HTTP(S)
type HTTPProvider struct {
	url    string
	client *http.Client
}

func (p *HTTPProvider) Transport() Transport { return TransportHTTP }

func (p *HTTPProvider) URL() string { return p.url }

func (p *HTTPProvider) Dial(ctx context.Context) (*rpc.Client, error) {
	return dialHTTP(ctx, p.url, p.client)
}

// WebsocketProvider dials nodes over ws:// or wss://
type WebsocketProvider struct {
	url string
}

func (p *WebsocketProvider) Transport() Transport { return TransportWebsocket }

func (p *WebsocketProvider) URL() string { return p.url }

func (p *WebsocketProvider) Dial(ctx context.Context) (*rpc.Client, error) {
	return dialWebsocket(ctx, p.url, "")
}
