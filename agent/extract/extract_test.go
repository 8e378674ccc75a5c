package extract

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	contractx "github.com/tanpawarit/hcp-interaction-logger/agent/contract"
	statex "github.com/tanpawarit/hcp-interaction-logger/agent/state"
	"github.com/tanpawarit/hcp-interaction-logger/interaction"
	openrouterx "github.com/tanpawarit/hcp-interaction-logger/pkg/openrouter"
)

type completionServer struct {
	mu      sync.Mutex
	content string
	status  int
	bodies  []string
}

func (s *completionServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	s.mu.Lock()
	s.bodies = append(s.bodies, string(raw))
	content, status := s.content, s.status
	s.mu.Unlock()

	if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
		http.NotFound(w, r)
		return
	}
	if status != 0 && status != http.StatusOK {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream unavailable","type":"server_error"}}`))
		return
	}

	resp := map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "test-model",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func newTestExtractor(t *testing.T, srv *completionServer) *Extractor {
	t.Helper()

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	client, err := openrouterx.NewClient(openrouterx.Config{
		APIKey:  "test-key",
		BaseURL: ts.URL,
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	clock := func() time.Time { return time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC) }
	e, err := New(client, "test-model", WithClock(clock), WithTemperature(0))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func TestFromTextFullRecord(t *testing.T) {
	t.Parallel()

	srv := &completionServer{content: `{"hcpName":"Dr. Smith","interactionType":"Meeting","interactionDate":"2025-02-14",` +
		`"summary":"Discussed trial","discussionTopics":"Efficacy, Dosage","sentiment":"positive",` +
		`"outcomes":null,"followUp":"Send samples"}`}
	e := newTestExtractor(t, srv)

	rec, err := e.FromText(context.Background(), "Met Dr. Smith on Feb 14 about the trial")
	if err != nil {
		t.Fatalf("FromText() error = %v", err)
	}
	if rec == nil {
		t.Fatal("expected a record")
	}
	if rec.HCPName != "Dr. Smith" || *rec.InteractionDate != "2025-02-14" {
		t.Fatalf("unexpected record: %#v", rec)
	}
	if rec.Sentiment == nil || *rec.Sentiment != interaction.SentimentPositive {
		t.Fatalf("unexpected sentiment: %v", rec.Sentiment)
	}
	if len(rec.DiscussionTopics) != 2 || rec.DiscussionTopics[1] != "Dosage" {
		t.Fatalf("unexpected topics: %#v", rec.DiscussionTopics)
	}
	if rec.Outcomes != nil {
		t.Fatalf("expected null outcomes, got %q", *rec.Outcomes)
	}

	body := srv.bodies[0]
	if !strings.Contains(body, `"json_schema"`) || !strings.Contains(body, `"interaction_record"`) {
		t.Fatalf("expected json_schema response format in request: %s", body)
	}
	if !strings.Contains(body, "2025-03-10") {
		t.Fatalf("expected current date in prompt: %s", body)
	}
}

func TestFromTextDefaultsDateOnlyWhenAbsent(t *testing.T) {
	t.Parallel()

	srv := &completionServer{content: `{"hcpName":"Dr. Lee","interactionDate":null,"sentiment":"ecstatic"}`}
	e := newTestExtractor(t, srv)

	rec, err := e.FromText(context.Background(), "Spoke to Dr. Lee")
	if err != nil {
		t.Fatalf("FromText() error = %v", err)
	}
	if rec.InteractionDate == nil || *rec.InteractionDate != "2025-03-10" {
		t.Fatalf("expected today's date, got %v", rec.InteractionDate)
	}
	if rec.Sentiment != nil {
		t.Fatalf("invalid sentiment must be dropped, got %v", *rec.Sentiment)
	}
}

func TestFromTextAcceptsDateAlias(t *testing.T) {
	t.Parallel()

	srv := &completionServer{content: "```json\n{\"hcpName\":\"Dr. Lee\",\"date\":\"2025-01-02\"}\n```"}
	e := newTestExtractor(t, srv)

	rec, err := e.FromText(context.Background(), "Dr. Lee on Jan 2")
	if err != nil {
		t.Fatalf("FromText() error = %v", err)
	}
	if *rec.InteractionDate != "2025-01-02" {
		t.Fatalf("expected alias date, got %q", *rec.InteractionDate)
	}
}

func TestFromTranscriptWithoutNameReturnsNil(t *testing.T) {
	t.Parallel()

	srv := &completionServer{content: `{"hcpName":null,"summary":"a meeting"}`}
	e := newTestExtractor(t, srv)

	conv := statex.NewConversation([]statex.Turn{{Sender: "agent", Text: "Who did you meet?"}}, "I had a meeting", nil)
	rec, err := e.FromTranscript(context.Background(), conv)
	if err != nil {
		t.Fatalf("FromTranscript() error = %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil record, got %#v", rec)
	}
	if !strings.Contains(srv.bodies[0], "agent: Who did you meet?") {
		t.Fatalf("expected transcript in request: %s", srv.bodies[0])
	}
}

func TestExtractErrors(t *testing.T) {
	t.Parallel()

	e := newTestExtractor(t, &completionServer{content: "I could not find anything"})
	_, err := e.FromText(context.Background(), "hello")
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation, got %v", err)
	}

	e = newTestExtractor(t, &completionServer{status: http.StatusBadGateway})
	_, err = e.FromText(context.Background(), "hello")
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("expected ErrModelInvoke, got %v", err)
	}

	_, err = e.FromText(context.Background(), "   ")
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestStripFence(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		`{"a":1}`:                 `{"a":1}`,
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}```":       `{"a":1}`,
	}
	for in, want := range cases {
		if got := stripFence(in); got != want {
			t.Fatalf("stripFence(%q) = %q, want %q", in, got, want)
		}
	}
}
