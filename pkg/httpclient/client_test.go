package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.pavlov/pkg/plan"
)

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient()
	assert.Equal(t, "", c.token)
	assert.Empty(t, c.headers)
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
}

func TestNewClient_Options(t *testing.T) {
	hc := &http.Client{}
	c := NewClient(
		WithHTTPClient(hc),
		WithTimeout(5*time.Second),
		WithBearerToken("tok"),
		WithHeader("X-Env", "staging"),
	)
	assert.Same(t, hc, c.httpClient)
	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
	assert.Equal(t, "tok", c.token)
	assert.Equal(t, "staging", c.headers.Get("X-Env"))
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		source string
		want   bool
	}{
		{"http://localhost/values", true},
		{"HTTPS://example.com/v.json", true},
		{"values.yaml", false},
		{"/etc/http/values.yaml", false},
		{"ftp://host/file", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.want, IsURL(tt.source))
		})
	}
}

func TestClient_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/values", r.URL.Path)
		assert.Equal(t, "Bearer my-token", r.Header.Get("Authorization"))
		assert.Equal(t, "staging", r.Header.Get("X-Env"))
		assert.Contains(t, r.Header.Get("Accept"), "application/json")
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	c := NewClient(WithBearerToken("my-token"), WithHeader("X-Env", "staging"))
	data, err := c.Get(context.Background(), srv.URL+"/values")

	require.NoError(t, err)
	assert.JSONEq(t, `{"ok": true}`, string(data))
}

func TestClient_Get_NoToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	data, err := NewClient().Get(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestClient_Get_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(strings.Repeat("x", 300)))
	}))
	defer srv.Close()

	_, err := NewClient().Get(context.Background(), srv.URL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 401")
	assert.True(t, strings.HasSuffix(err.Error(), "..."))
}

func TestClient_Get_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(WithTimeout(time.Second)).Get(context.Background(), url)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed")
}

func TestClient_Get_BadURL(t *testing.T) {
	_, err := NewClient().Get(context.Background(), "http://[::1]:namedport")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create request")
}

func TestClient_Get_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient().Get(ctx, srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_FetchValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		path string
		want any
	}{
		{"json", `{"response": {"status": 200}}`, "response.status", 200},
		{"yaml", "response:\n  items: [a, b]\n", "response.items.1", "b"},
		{"empty", "", "anything", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			v, err := NewClient().FetchValues(context.Background(), srv.URL)
			require.NoError(t, err)
			got := plan.Lookup(v, tt.path)
			if tt.want == nil {
				assert.Equal(t, map[string]any{}, v)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_FetchValues_Malformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("a: [1"))
	}))
	defer srv.Close()

	_, err := NewClient().FetchValues(context.Background(), srv.URL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse values")
}
