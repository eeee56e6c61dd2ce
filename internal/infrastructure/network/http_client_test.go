package network

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient_Direct(t *testing.T) {
	c, err := NewHTTPClient("", 5*time.Second)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, c.Timeout)
	assert.NotNil(t, c.Transport)
}

func TestNewHTTPClient_HTTPProxy(t *testing.T) {
	c, err := NewHTTPClient("http://proxy.local:3128", 0)
	require.NoError(t, err)

	tr := c.Transport.(*http.Transport)
	req := &http.Request{URL: &url.URL{Scheme: "https", Host: "tio.run"}}
	got, err := tr.Proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "proxy.local:3128", got.Host)
}

func TestNewHTTPClient_SocksProxy(t *testing.T) {
	c, err := NewHTTPClient("socks5://127.0.0.1:1080", 0)
	require.NoError(t, err)

	tr := c.Transport.(*http.Transport)
	assert.Nil(t, tr.Proxy)
	assert.NotNil(t, tr.DialContext)
}

func TestNewHTTPClient_BadScheme(t *testing.T) {
	_, err := NewHTTPClient("ftp://proxy.local", 0)
	assert.ErrorContains(t, err, "unsupported proxy scheme")

	_, err = NewHTTPClient("://bad", 0)
	assert.Error(t, err)
}
