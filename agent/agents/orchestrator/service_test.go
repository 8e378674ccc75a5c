package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	contractx "github.com/tanpawarit/hcp-interaction-logger/agent/contract"
	statex "github.com/tanpawarit/hcp-interaction-logger/agent/state"
	"github.com/tanpawarit/hcp-interaction-logger/interaction"
)

type fakeDecider struct {
	decision contractx.Decision
	err      error
	calls    int
	seen     *statex.Conversation
}

func (f *fakeDecider) Decide(ctx context.Context, conv *statex.Conversation) (contractx.Decision, error) {
	f.calls++
	f.seen = conv
	if f.err != nil {
		return contractx.Decision{}, f.err
	}
	return f.decision, nil
}

type fakeConversant struct {
	reply string
	err   error
	calls int
}

func (f *fakeConversant) Reply(ctx context.Context, conv *statex.Conversation) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeRegistry struct {
	decider      *fakeDecider
	fetchDecider *fakeDecider
	conversant   *fakeConversant
}

func (f *fakeRegistry) Decider() contractx.Decider       { return f.decider }
func (f *fakeRegistry) FetchDecider() contractx.Decider  { return f.fetchDecider }
func (f *fakeRegistry) Conversant() contractx.Conversant { return f.conversant }

type fakeTools struct {
	result contractx.ToolResult
	err    error
	seen   []contractx.Decision
}

func (f *fakeTools) Execute(ctx context.Context, d contractx.Decision) (contractx.ToolResult, error) {
	f.seen = append(f.seen, d)
	if f.err != nil {
		return contractx.ToolResult{}, f.err
	}
	return f.result, nil
}

type fakeExtractor struct {
	rec  *interaction.Interaction
	err  error
	seen *statex.Conversation
}

func (f *fakeExtractor) FromText(ctx context.Context, text string) (*interaction.Interaction, error) {
	return f.rec, f.err
}

func (f *fakeExtractor) FromTranscript(ctx context.Context, conv *statex.Conversation) (*interaction.Interaction, error) {
	f.seen = conv
	return f.rec, f.err
}

type fakeStore struct {
	mu       sync.Mutex
	inserted []*interaction.Interaction
	err      error
}

func (f *fakeStore) Insert(ctx context.Context, rec *interaction.Interaction, method interaction.Method) (*interaction.Interaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	saved := *rec
	saved.ID = int64(len(f.inserted) + 1)
	saved.LoggingMethod = method
	f.inserted = append(f.inserted, &saved)
	return &saved, nil
}

func (f *fakeStore) UpdatePartial(context.Context, int64, interaction.Patch) (bool, error) {
	return false, nil
}

func (f *fakeStore) GetByID(context.Context, int64) (*interaction.Interaction, error) {
	return nil, interaction.ErrNotFound
}

func (f *fakeStore) FindByNameAndDate(context.Context, string, string) ([]interaction.Summary, error) {
	return nil, nil
}

func (f *fakeStore) GetFullByNameAndDate(context.Context, string, string) (*interaction.Interaction, error) {
	return nil, interaction.ErrNotFound
}

func (f *fakeStore) ListAll(context.Context) ([]interaction.Interaction, error) {
	return nil, nil
}

type fixture struct {
	store     *fakeStore
	registry  *fakeRegistry
	tools     *fakeTools
	extractor *fakeExtractor
}

func newFixture() *fixture {
	return &fixture{
		store: &fakeStore{},
		registry: &fakeRegistry{
			decider:      &fakeDecider{},
			fetchDecider: &fakeDecider{},
			conversant:   &fakeConversant{reply: "Which HCP did you meet?"},
		},
		tools:     &fakeTools{},
		extractor: &fakeExtractor{},
	}
}

func (f *fixture) orchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	o, err := New(f.store, f.registry, f.tools, f.extractor, WithClock(func() time.Time {
		return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return o
}

func ptr[T any](v T) *T { return &v }

func TestNewRequiresDependencies(t *testing.T) {
	t.Parallel()

	f := newFixture()
	if _, err := New(nil, f.registry, f.tools, f.extractor); err == nil {
		t.Fatal("expected error for nil store")
	}
	if _, err := New(f.store, nil, f.tools, f.extractor); err == nil {
		t.Fatal("expected error for nil registry")
	}
	if _, err := New(f.store, f.registry, nil, f.extractor); err == nil {
		t.Fatal("expected error for nil tools")
	}
	if _, err := New(f.store, f.registry, f.tools, nil); err == nil {
		t.Fatal("expected error for nil extractor")
	}
}

func TestLogFromChatSavesCompleteRecord(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.extractor.rec = &interaction.Interaction{
		HCPName:         "Dr. Smith",
		InteractionDate: ptr("2025-03-10"),
		Summary:         ptr("Discussed Product X"),
	}
	o := f.orchestrator(t)

	out, err := o.LogFromChat(context.Background(), Request{
		Message: "Met Dr. Smith today, discussed Product X",
		History: []statex.Turn{{Sender: "agent", Text: "Hi! Who did you meet?"}},
	})
	if err != nil {
		t.Fatalf("LogFromChat() error = %v", err)
	}
	if out.Status != contractx.TurnSuccess {
		t.Fatalf("expected success, got %q", out.Status)
	}
	if out.Response != "Great! I've got it all saved." {
		t.Fatalf("unexpected response: %q", out.Response)
	}
	if out.InteractionID == nil || *out.InteractionID != 1 {
		t.Fatalf("unexpected interaction id: %v", out.InteractionID)
	}
	if len(f.store.inserted) != 1 || f.store.inserted[0].LoggingMethod != interaction.MethodChat {
		t.Fatalf("expected one chat insert, got %+v", f.store.inserted)
	}
	if f.registry.conversant.calls != 0 {
		t.Fatalf("conversant should not run after a save")
	}
	if got := len(f.extractor.seen.Turns); got != 2 {
		t.Fatalf("expected history plus message in transcript, got %d turns", got)
	}
}

func TestLogFromChatContinuesWithoutName(t *testing.T) {
	t.Parallel()

	f := newFixture()
	o := f.orchestrator(t)

	out, err := o.LogFromChat(context.Background(), Request{Message: "I had a meeting today"})
	if err != nil {
		t.Fatalf("LogFromChat() error = %v", err)
	}
	if out.Status != contractx.TurnContinue {
		t.Fatalf("expected continue, got %q", out.Status)
	}
	if out.Response != "Which HCP did you meet?" {
		t.Fatalf("unexpected response: %q", out.Response)
	}
	if len(f.store.inserted) != 0 {
		t.Fatalf("nothing should be saved")
	}
}

func TestLogFromChatContinuesOnInvalidRecord(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.extractor.rec = &interaction.Interaction{HCPName: "Dr. Lee", InteractionDate: ptr("yesterday")}
	o := f.orchestrator(t)

	out, err := o.LogFromChat(context.Background(), Request{Message: "Saw Dr. Lee yesterday"})
	if err != nil {
		t.Fatalf("LogFromChat() error = %v", err)
	}
	if out.Status != contractx.TurnContinue || f.registry.conversant.calls != 1 {
		t.Fatalf("expected conversation to continue, got %+v", out)
	}
}

func TestLogFromChatContinuesOnExtractionError(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.extractor.err = contractx.ErrSchemaViolation
	o := f.orchestrator(t)

	out, err := o.LogFromChat(context.Background(), Request{Message: "Met Dr. Smith"})
	if err != nil {
		t.Fatalf("LogFromChat() error = %v", err)
	}
	if out.Status != contractx.TurnContinue {
		t.Fatalf("expected continue, got %q", out.Status)
	}
}

func TestLogFromChatPropagatesStoreFailure(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.extractor.rec = &interaction.Interaction{HCPName: "Dr. Smith"}
	f.store.err = errors.New("db down")
	o := f.orchestrator(t)

	if _, err := o.LogFromChat(context.Background(), Request{Message: "Met Dr. Smith"}); err == nil {
		t.Fatal("expected store error")
	}
}

func TestLogFromChatRejectsEmptyMessage(t *testing.T) {
	t.Parallel()

	f := newFixture()
	o := f.orchestrator(t)

	_, err := o.LogFromChat(context.Background(), Request{Message: "   "})
	if !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expected ErrInvalidMessage, got %v", err)
	}
}

func TestUpdateFromChatInjectsAnchoredID(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.registry.decider.decision = contractx.Decision{
		Kind:   contractx.ToolUpdate,
		Update: &contractx.UpdateArgs{NewSentiment: ptr("Positive")},
	}
	f.tools.result = contractx.ToolResult{Kind: contractx.ToolUpdate, Text: "Successfully updated interaction with ID 7."}
	o := f.orchestrator(t)

	out, err := o.UpdateFromChat(context.Background(), Request{
		Message:       "change the sentiment to positive",
		InteractionID: ptr(int64(7)),
	})
	if err != nil {
		t.Fatalf("UpdateFromChat() error = %v", err)
	}
	if out.Status != contractx.TurnSuccess {
		t.Fatalf("expected success, got %q", out.Status)
	}
	if out.ToolOutput != "Successfully updated interaction with ID 7." {
		t.Fatalf("unexpected tool output: %q", out.ToolOutput)
	}
	if len(f.tools.seen) != 1 {
		t.Fatalf("expected one tool call, got %d", len(f.tools.seen))
	}
	got := f.tools.seen[0].Update.InteractionID
	if got == nil || *got != 7 {
		t.Fatalf("expected anchored id 7, got %v", got)
	}
	if f.registry.decider.seen.InteractionID == nil {
		t.Fatalf("decider should see the anchored conversation")
	}
}

func TestUpdateFromChatKeepsExplicitID(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.registry.decider.decision = contractx.Decision{
		Kind:   contractx.ToolUpdate,
		Update: &contractx.UpdateArgs{InteractionID: ptr(int64(3)), NewSummary: ptr("s")},
	}
	f.tools.result = contractx.ToolResult{Kind: contractx.ToolUpdate, Text: "Successfully updated interaction with ID 3."}
	o := f.orchestrator(t)

	if _, err := o.UpdateFromChat(context.Background(), Request{
		Message:       "update interaction 3",
		InteractionID: ptr(int64(7)),
	}); err != nil {
		t.Fatalf("UpdateFromChat() error = %v", err)
	}
	if got := *f.tools.seen[0].Update.InteractionID; got != 3 {
		t.Fatalf("explicit id should win, got %d", got)
	}
}

func TestUpdateFromChatReplyWithoutTool(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.registry.decider.decision = contractx.Decision{Reply: "Which field should I change?"}
	o := f.orchestrator(t)

	out, err := o.UpdateFromChat(context.Background(), Request{Message: "update it"})
	if err != nil {
		t.Fatalf("UpdateFromChat() error = %v", err)
	}
	if out.Status != contractx.TurnContinue || out.Response != "Which field should I change?" {
		t.Fatalf("unexpected result: %+v", out)
	}
	if len(f.tools.seen) != 0 {
		t.Fatalf("no tool should run")
	}
}

func TestUpdateFromChatEmptyReplyFallsBack(t *testing.T) {
	t.Parallel()

	f := newFixture()
	o := f.orchestrator(t)

	out, err := o.UpdateFromChat(context.Background(), Request{Message: "hmm"})
	if err != nil {
		t.Fatalf("UpdateFromChat() error = %v", err)
	}
	if strings.TrimSpace(out.Response) == "" {
		t.Fatal("expected fallback response")
	}
}

func TestUpdateFromChatFetchContinues(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.registry.decider.decision = contractx.Decision{
		Kind:  contractx.ToolFetch,
		Fetch: &contractx.FetchArgs{HCPName: "Dr. Smith", InteractionDate: "2025-03-10"},
	}
	rec := &interaction.Interaction{ID: 4, HCPName: "Dr. Smith"}
	f.tools.result = contractx.ToolResult{
		Kind:  contractx.ToolFetch,
		Fetch: &contractx.FetchResult{Status: contractx.FetchSuccess, Data: rec},
	}
	o := f.orchestrator(t)

	out, err := o.UpdateFromChat(context.Background(), Request{Message: "show me Dr. Smith on 2025-03-10"})
	if err != nil {
		t.Fatalf("UpdateFromChat() error = %v", err)
	}
	if out.Fetched == nil || out.Record != rec {
		t.Fatalf("expected fetched record in result, got %+v", out)
	}
	if out.InteractionID == nil || *out.InteractionID != 4 {
		t.Fatalf("expected interaction id 4, got %v", out.InteractionID)
	}
	if out.Status != contractx.TurnContinue {
		t.Fatalf("expected continue after a fetch in the update workflow, got %q", out.Status)
	}
}

func TestUpdateFromChatModelError(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.registry.decider.err = contractx.ErrModelInvoke
	o := f.orchestrator(t)

	_, err := o.UpdateFromChat(context.Background(), Request{Message: "update it"})
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("expected ErrModelInvoke, got %v", err)
	}
}

func TestUpdateFromChatRejectsNonPositiveID(t *testing.T) {
	t.Parallel()

	f := newFixture()
	o := f.orchestrator(t)

	_, err := o.UpdateFromChat(context.Background(), Request{Message: "x", InteractionID: ptr(int64(0))})
	if !errors.Is(err, ErrInvalidInteraction) {
		t.Fatalf("expected ErrInvalidInteraction, got %v", err)
	}
	if f.registry.decider.calls != 0 {
		t.Fatal("decider should not run on invalid input")
	}
}

func TestFetchFromChatUsesFetchDecider(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.registry.fetchDecider.decision = contractx.Decision{
		Kind:  contractx.ToolFetch,
		Fetch: &contractx.FetchArgs{HCPName: "Dr. Smith", InteractionDate: "2025-03-10"},
	}
	f.tools.result = contractx.ToolResult{
		Kind: contractx.ToolFetch,
		Fetch: &contractx.FetchResult{
			Status: contractx.FetchMultipleFound,
			Data:   []interaction.Summary{{ID: 1}, {ID: 2}},
		},
	}
	o := f.orchestrator(t)

	out, err := o.FetchFromChat(context.Background(), Request{Message: "find Dr. Smith on 2025-03-10"})
	if err != nil {
		t.Fatalf("FetchFromChat() error = %v", err)
	}
	if f.registry.fetchDecider.calls != 1 || f.registry.decider.calls != 0 {
		t.Fatalf("expected only the fetch decider to run")
	}
	if out.Fetched == nil || out.Fetched.Status != contractx.FetchMultipleFound {
		t.Fatalf("unexpected fetch result: %+v", out.Fetched)
	}
	if out.Status != contractx.TurnSuccess {
		t.Fatalf("expected success, got %q", out.Status)
	}
}

func TestFetchFromChatNotFound(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.registry.fetchDecider.decision = contractx.Decision{
		Kind:  contractx.ToolFetch,
		Fetch: &contractx.FetchArgs{HCPName: "Dr. Nobody", InteractionDate: "2025-03-10"},
	}
	f.tools.result = contractx.ToolResult{
		Kind:  contractx.ToolFetch,
		Fetch: &contractx.FetchResult{Status: contractx.FetchNotFound, Data: []interaction.Summary{}},
	}
	o := f.orchestrator(t)

	out, err := o.FetchFromChat(context.Background(), Request{Message: "find Dr. Nobody"})
	if err != nil {
		t.Fatalf("FetchFromChat() error = %v", err)
	}
	if out.Status != contractx.TurnContinue || out.Fetched.Found() {
		t.Fatalf("expected not found to continue, got %+v", out)
	}
}
