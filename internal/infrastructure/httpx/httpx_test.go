package httpx

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type rtFunc func(*http.Request) (*http.Response, error)

func (f rtFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func httpClientRT(rt http.RoundTripper) *http.Client {
	return &http.Client{Transport: rt, Timeout: 2 * time.Second}
}

func respond(r *http.Request, code int, body string) *http.Response {
	return &http.Response{StatusCode: code, Body: io.NopCloser(strings.NewReader(body)), Header: make(http.Header), Request: r}
}

type okResp struct {
	OK bool `json:"ok"`
}

func TestDoJSON_Retry500Then200(t *testing.T) {
	var calls int
	rt := httpClientRT(rtFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			return respond(r, 500, "err"), nil
		}
		return respond(r, 200, `{"ok": true}`), nil
	}))
	var out okResp
	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c := &Client{HTTP: rt}
	require.NoError(t, c.DoJSON(ctx, req, &out))
	require.True(t, out.OK)
	require.GreaterOrEqual(t, calls, 2)
}

type tempTimeoutErr struct{}

func (tempTimeoutErr) Error() string   { return "timeout" }
func (tempTimeoutErr) Timeout() bool   { return true }
func (tempTimeoutErr) Temporary() bool { return true }

func TestDoJSON_RetryNetTimeoutThen200(t *testing.T) {
	var calls int
	rt := httpClientRT(rtFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			var ne net.Error = tempTimeoutErr{}
			return nil, ne
		}
		return respond(r, 200, `{"ok": true}`), nil
	}))
	var out okResp
	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c := &Client{HTTP: rt}
	require.NoError(t, c.DoJSON(ctx, req, &out))
	require.True(t, out.OK)
}

func TestDoJSON_NoRetryOn401(t *testing.T) {
	var calls int
	rt := httpClientRT(rtFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		return respond(r, 401, "unauthorized"), nil
	}))
	var out any
	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	c := &Client{HTTP: rt}

	err := c.DoJSON(context.Background(), req, &out)
	require.Error(t, err)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, 401, se.Code)
	require.Equal(t, 1, calls)
}

func TestDoJSON_BearerToken(t *testing.T) {
	var auth string
	rt := httpClientRT(rtFunc(func(r *http.Request) (*http.Response, error) {
		auth = r.Header.Get("Authorization")
		return respond(r, 200, `{"ok": true}`), nil
	}))
	var out okResp
	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	c := &Client{HTTP: rt, Token: "abc"}

	require.NoError(t, c.DoJSON(context.Background(), req, &out))
	require.Equal(t, "Bearer abc", auth)
}

func TestDoJSON_DecodeError_NoRetry(t *testing.T) {
	var calls int
	rt := httpClientRT(rtFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		return &http.Response{StatusCode: 200, Body: io.NopCloser(bytes.NewBufferString("{x")), Header: make(http.Header), Request: r}, nil
	}))
	var out map[string]any
	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	c := &Client{HTTP: rt}

	err := c.DoJSON(context.Background(), req, &out)
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode")
	require.Equal(t, 1, calls)
}
