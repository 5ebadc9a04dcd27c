package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// richPage is long enough to pass the placeholder heuristic.
const richPage = `<html><body><main>
<h1>Senior Backend Engineer</h1>
<p>We are looking for an engineer with deep experience building distributed
systems in Go. You will own services end to end, from design through
production operation, working closely with product and infrastructure.</p>
</main></body></html>`

func TestFetch_DirectSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Chrome")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(richPage))
	}))
	defer server.Close()

	result, err := Fetch(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, MethodDirect, result.Method)
	assert.Contains(t, result.HTML, "Senior Backend Engineer")
	assert.Equal(t, server.URL, result.URL)
}

func TestFetch_InvalidURL(t *testing.T) {
	_, err := Fetch(context.Background(), "not-a-valid-url", nil)
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "invalid URL")
}

func TestFetch_PlaceholderEscalatesExactlyOnce(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<div>Loading...</div>`))
	}))
	defer server.Close()

	renderCalls := 0
	opts := DefaultOptions()
	opts.Render = func(_ context.Context, _ string) (string, error) {
		renderCalls++
		return richPage, nil
	}

	result, err := Fetch(context.Background(), server.URL, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, renderCalls)
	assert.Equal(t, MethodRendered, result.Method)
	assert.Contains(t, result.HTML, "Senior Backend Engineer")
}

func TestFetch_TransportErrorEscalates(t *testing.T) {
	// A closed server forces a transport error on the direct tier.
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	url := server.URL
	server.Close()

	renderCalls := 0
	opts := DefaultOptions()
	opts.Render = func(_ context.Context, _ string) (string, error) {
		renderCalls++
		return richPage, nil
	}

	result, err := Fetch(context.Background(), url, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, renderCalls)
	assert.Equal(t, MethodRendered, result.Method)
}

func TestFetch_DirectOnlyNeverEscalates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<div>Loading...</div>`))
	}))
	defer server.Close()

	renderCalls := 0
	opts := DefaultOptions()
	opts.DirectOnly = true
	opts.Render = func(_ context.Context, _ string) (string, error) {
		renderCalls++
		return richPage, nil
	}

	_, err := Fetch(context.Background(), server.URL, opts)
	require.Error(t, err)
	assert.Equal(t, 0, renderCalls)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "JavaScript")
}

func TestFetch_BothTiersFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<div>Loading...</div>`))
	}))
	defer server.Close()

	renderErr := errors.New("chrome crashed")
	opts := DefaultOptions()
	opts.Render = func(_ context.Context, _ string) (string, error) {
		return "", renderErr
	}

	_, err := Fetch(context.Background(), server.URL, opts)
	require.Error(t, err)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, server.URL, fetchErr.URL)
	assert.ErrorIs(t, err, renderErr)
}

func TestIsJavaScriptPlaceholder_Phrases(t *testing.T) {
	tests := []struct {
		name string
		html string
		want bool
	}{
		{
			name: "enable javascript phrase",
			html: `<html><body><noscript>You need to enable JavaScript to run this app.</noscript>` +
				strings.Repeat("<p>padding text to exceed the length threshold</p>", 5) + `</body></html>`,
			want: true,
		},
		{
			name: "loading placeholder",
			html: `<div>Loading...</div>`,
			want: true,
		},
		{
			name: "phrase match is case sensitive",
			html: `<body><p>loading...</p>` +
				strings.Repeat(`<p>plenty of real content in this document body</p>`, 5) + `</body>`,
			want: false,
		},
		{
			name: "script contents ignored",
			html: `<html><head><script>window.__DATA__ = {};</script></head><body>` +
				strings.Repeat(`<p>actual page content rendered server side here</p>`, 5) + `</body></html>`,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsJavaScriptPlaceholder(tt.html))
		})
	}
}

func TestIsJavaScriptPlaceholder_LengthBoundary(t *testing.T) {
	// Exactly 99 visible characters: flagged.
	at99 := "<body><p>" + strings.Repeat("x", 99) + "</p></body>"
	assert.True(t, IsJavaScriptPlaceholder(at99))

	// Exactly 100 visible characters with no placeholder phrase: not flagged.
	at100 := "<body><p>" + strings.Repeat("x", 100) + "</p></body>"
	assert.False(t, IsJavaScriptPlaceholder(at100))
}
