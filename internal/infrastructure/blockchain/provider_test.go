package blockchain

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/require"
)

func TestGetProvider_DispatchesOnScheme(t *testing.T) {
	cases := []struct {
		url       string
		transport Transport
	}{
		{"ws://localhost:8545", TransportWebsocket},
		{"wss://localhost:8545", TransportWebsocket},
		{"WSS://node.example.org", TransportWebsocket},
		{"http://localhost:8545", TransportHTTP},
		{"https://localhost:8545", TransportHTTP},
		{"localhost:8545", TransportHTTP},
	}
	for _, tc := range cases {
		t.Run(tc.url, func(t *testing.T) {
			p := GetProvider(tc.url)
			require.Equal(t, tc.transport, p.Transport())
			require.Equal(t, tc.url, p.URL())
			switch tc.transport {
			case TransportWebsocket:
				_, ok := p.(*WebsocketProvider)
				require.True(t, ok)
			default:
				_, ok := p.(*HTTPProvider)
				require.True(t, ok)
			}
		})
	}
}

func TestGetProvider_TrimsURL(t *testing.T) {
	origWS, origHTTP := dialWebsocket, dialHTTP
	t.Cleanup(func() {
		dialWebsocket = origWS
		dialHTTP = origHTTP
	})

	var used []string
	dialWebsocket = func(_ context.Context, url, origin string) (*rpc.Client, error) {
		require.Empty(t, origin)
		used = append(used, url)
		return nil, errors.New("ws unavailable")
	}
	dialHTTP = func(_ context.Context, url string, _ *http.Client) (*rpc.Client, error) {
		used = append(used, url)
		return nil, errors.New("http unavailable")
	}

	ws := GetProvider("  wss://node.example.org/ws \n")
	require.Equal(t, TransportWebsocket, ws.Transport())
	require.Equal(t, "wss://node.example.org/ws", ws.URL())

	web := GetProvider("\thttps://node.example.org ")
	require.Equal(t, TransportHTTP, web.Transport())
	require.Equal(t, "https://node.example.org", web.URL())

	_, _ = ws.Dial(context.Background())
	_, _ = web.Dial(context.Background())
	require.Equal(t, []string{"wss://node.example.org/ws", "https://node.example.org"}, used)
}

func TestProvider_DialUsesMatchingTransport(t *testing.T) {
	origWS, origHTTP := dialWebsocket, dialHTTP
	t.Cleanup(func() {
		dialWebsocket = origWS
		dialHTTP = origHTTP
	})

	var used []string
	dialWebsocket = func(_ context.Context, url, _ string) (*rpc.Client, error) {
		used = append(used, "ws:"+url)
		return nil, errors.New("ws unavailable")
	}
	dialHTTP = func(_ context.Context, url string, client *http.Client) (*rpc.Client, error) {
		require.NotNil(t, client)
		used = append(used, "http:"+url)
		return nil, errors.New("http unavailable")
	}

	_, err := GetProvider("wss://a").Dial(context.Background())
	require.EqualError(t, err, "ws unavailable")
	_, err = GetProvider("https://b").Dial(context.Background())
	require.EqualError(t, err, "http unavailable")
	require.Equal(t, []string{"ws:wss://a", "http:https://b"}, used)
}
