package openrouter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	openaisdk "github.com/openai/openai-go"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{APIKey: "  "})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestNewClientSendsAttributionHeaders(t *testing.T) {
	t.Parallel()

	var referer, title, auth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		referer = r.Header.Get("HTTP-Referer")
		title = r.Header.Get("X-Title")
		auth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"m","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"ok"}}]}`))
	}))
	t.Cleanup(ts.Close)

	client, err := NewClient(Config{
		APIKey:   "test-key",
		BaseURL:  ts.URL + "/",
		Timeout:  5 * time.Second,
		SiteURL:  "https://hcp.example.com",
		SiteName: "HCP Logger",
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	_, err = client.Chat.Completions.New(context.Background(), openaisdk.ChatCompletionNewParams{
		Model:    openaisdk.ChatModel("m"),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{openaisdk.UserMessage("hi")},
	})
	if err != nil {
		t.Fatalf("completion error = %v", err)
	}
	if referer != "https://hcp.example.com" || title != "HCP Logger" {
		t.Fatalf("missing attribution headers: referer=%q title=%q", referer, title)
	}
	if auth != "Bearer test-key" {
		t.Fatalf("unexpected authorization header: %q", auth)
	}
}

func TestHTTPClientOnlyWhenHeadersConfigured(t *testing.T) {
	t.Parallel()

	if c := (&Config{}).httpClient(); c != nil {
		t.Fatalf("expected nil client without headers")
	}

	c := (&Config{SiteName: "HCP Logger", Timeout: time.Second}).httpClient()
	if c == nil {
		t.Fatal("expected client when a header is configured")
	}
	if c.Timeout != time.Second {
		t.Fatalf("unexpected timeout: %v", c.Timeout)
	}
}

func TestHeaderTransportDoesNotMutateRequest(t *testing.T) {
	t.Parallel()

	var seen string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("X-Title")
	}))
	t.Cleanup(ts.Close)

	client := &http.Client{Transport: &headerTransport{
		base:    http.DefaultTransport,
		headers: map[string]string{"X-Title": "HCP Logger"},
	}}
	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	_ = resp.Body.Close()

	if seen != "HCP Logger" {
		t.Fatalf("header not sent, got %q", seen)
	}
	if req.Header.Get("X-Title") != "" {
		t.Fatal("original request should be left untouched")
	}
}
