package gemini

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/spigell/mock-interviewer/internal/ai"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

type fakeChatCreator struct {
	mu    sync.Mutex
	calls []chatCallRecord
	queue map[string][]fakeChatResponse
}

type chatCallRecord struct {
	model  string
	config *genai.GenerateContentConfig
	chat   *fakeChat
}

type fakeChatResponse struct {
	resp *genai.GenerateContentResponse
	err  error
}

type fakeChat struct {
	mu       sync.Mutex
	response fakeChatResponse
	messages []string
}

func (f *fakeChat) SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, part := range parts {
		f.messages = append(f.messages, part.Text)
	}
	return f.response.resp, f.response.err
}

func newFakeChatCreator() *fakeChatCreator {
	return &fakeChatCreator{queue: make(map[string][]fakeChatResponse)}
}

func (f *fakeChatCreator) enqueue(model string, resp *genai.GenerateContentResponse, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue[model] = append(f.queue[model], fakeChatResponse{resp: resp, err: err})
}

func (f *fakeChatCreator) Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	responses := f.queue[model]
	if len(responses) == 0 {
		return nil, errors.New("unexpected call")
	}
	res := responses[0]
	f.queue[model] = responses[1:]
	chat := &fakeChat{response: res}
	f.calls = append(f.calls, chatCallRecord{model: model, config: config, chat: chat})
	return chat, nil
}

func noWait(t *testing.T) {
	t.Helper()
	original := wait
	wait = func(context.Context, time.Duration) error { return nil }
	t.Cleanup(func() { wait = original })
}

func TestGeneratorRetriesOnTemporaryError(t *testing.T) {
	noWait(t)

	chats := newFakeChatCreator()
	tempErr := genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}
	chats.enqueue("gemini-2.5-flash", nil, tempErr)
	chats.enqueue("gemini-2.5-flash", &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: `{"score": 80}`}}},
		}},
	}, nil)

	g := &Generator{
		chats:      chats,
		model:      "gemini-2.5-flash",
		maxRetries: 2,
		logger:     zap.NewNop(),
	}

	output, err := g.GenerateContent(context.Background(), "You are an interviewer.", "Evaluate this answer.")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if output != `{"score": 80}` {
		t.Fatalf("unexpected output: %q", output)
	}

	if len(chats.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(chats.calls))
	}

	for _, call := range chats.calls {
		if call.config == nil || call.config.SystemInstruction == nil {
			t.Fatalf("expected system instruction to be set")
		}
		if got := call.config.SystemInstruction.Parts[0].Text; got != "You are an interviewer." {
			t.Fatalf("unexpected system instruction: %q", got)
		}
		if len(call.chat.messages) != 1 || call.chat.messages[0] != "Evaluate this answer." {
			t.Fatalf("unexpected chat message: %+v", call.chat.messages)
		}
	}
}

func TestGeneratorStopsAfterRetriesExhausted(t *testing.T) {
	noWait(t)

	chats := newFakeChatCreator()
	tempErr := genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}
	chats.enqueue("gemini-2.5-flash", nil, tempErr)
	chats.enqueue("gemini-2.5-flash", nil, tempErr)

	g := &Generator{
		chats:      chats,
		model:      "gemini-2.5-flash",
		maxRetries: 2,
		logger:     zap.NewNop(),
	}

	_, err := g.GenerateContent(context.Background(), "sys", "msg")
	if err == nil {
		t.Fatal("expected error after retries exhausted")
	}

	if len(chats.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(chats.calls))
	}
}

func TestGeneratorDoesNotRetryOnLongQuotaDelay(t *testing.T) {
	chats := newFakeChatCreator()
	quotaErr := genai.APIError{
		Code:    http.StatusTooManyRequests,
		Status:  "RESOURCE_EXHAUSTED",
		Message: "quota exhausted, retry after 60 seconds",
	}
	chats.enqueue("gemini-2.5-flash", nil, quotaErr)

	g := &Generator{
		chats:      chats,
		model:      "gemini-2.5-flash",
		maxRetries: 3,
		logger:     zap.NewNop(),
	}

	_, err := g.GenerateContent(context.Background(), "sys", "msg")
	if err == nil {
		t.Fatal("expected error when quota delay too long")
	}

	if len(chats.calls) != 1 {
		t.Fatalf("expected single call, got %d", len(chats.calls))
	}
}

func TestGeneratorMapsQuotaErrorToRateLimit(t *testing.T) {
	chats := newFakeChatCreator()
	chats.enqueue("gemini-2.5-flash", nil, genai.APIError{
		Code:    http.StatusTooManyRequests,
		Status:  "RESOURCE_EXHAUSTED",
		Message: "Please retry in 45s",
	})

	g := &Generator{chats: chats, model: "gemini-2.5-flash", maxRetries: 3, logger: zap.NewNop()}

	_, err := g.GenerateContent(context.Background(), "sys", "msg")
	var rl *ai.ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if rl.RetryAfter != 45*time.Second {
		t.Fatalf("unexpected retry after: %s", rl.RetryAfter)
	}
}

func TestGeneratorDoesNotRetryClientErrors(t *testing.T) {
	chats := newFakeChatCreator()
	chats.enqueue("gemini-2.5-flash", nil, genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT"})

	g := &Generator{chats: chats, model: "gemini-2.5-flash", maxRetries: 3, logger: zap.NewNop()}

	_, err := g.GenerateContent(context.Background(), "sys", "msg")
	var unavailable *ai.ErrProviderUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected provider unavailable error, got %v", err)
	}
	if len(chats.calls) != 1 {
		t.Fatalf("expected single call, got %d", len(chats.calls))
	}
}

func TestGeneratorEmptyResponseIsInvalid(t *testing.T) {
	noWait(t)

	chats := newFakeChatCreator()
	empty := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: &genai.Content{}}}}
	chats.enqueue("gemini-2.5-flash", empty, nil)
	chats.enqueue("gemini-2.5-flash", empty, nil)

	g := &Generator{chats: chats, model: "gemini-2.5-flash", maxRetries: 2, logger: zap.NewNop()}

	_, err := g.GenerateContent(context.Background(), "sys", "msg")
	var invalid *ai.ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Fatalf("expected invalid response error, got %v", err)
	}
}

func TestGeneratorRejectsEmptyMessage(t *testing.T) {
	g := &Generator{chats: newFakeChatCreator(), model: "gemini-2.5-flash", maxRetries: 1, logger: zap.NewNop()}
	if _, err := g.GenerateContent(context.Background(), "sys", "   "); err == nil {
		t.Fatal("expected error for empty message")
	}
}

func TestGeneratorStopsOnCancelledContext(t *testing.T) {
	chats := newFakeChatCreator()
	g := &Generator{chats: chats, model: "gemini-2.5-flash", maxRetries: 3, logger: zap.NewNop()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := g.GenerateContent(ctx, "sys", "msg"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(chats.calls) != 0 {
		t.Fatalf("expected no calls, got %d", len(chats.calls))
	}
}

func TestGeneratorBackoffHonoursDeadline(t *testing.T) {
	chats := newFakeChatCreator()
	overloaded := genai.APIError{Code: http.StatusServiceUnavailable, Status: "UNAVAILABLE", Message: "overloaded, retry in 20s"}
	chats.enqueue("gemini-2.5-flash", nil, overloaded)
	chats.enqueue("gemini-2.5-flash", nil, overloaded)

	g := &Generator{chats: chats, model: "gemini-2.5-flash", maxRetries: 3, logger: zap.NewNop()}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := g.GenerateContent(ctx, "sys", "msg")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("expected the backoff to stop at the deadline, took %s", elapsed)
	}
	if len(chats.calls) != 1 {
		t.Fatalf("expected a single call before the deadline, got %d", len(chats.calls))
	}
}

func TestQuotaDelay(t *testing.T) {
	tests := []struct {
		message string
		want    time.Duration
		found   bool
	}{
		{message: "quota exhausted, retry after 60 seconds", want: 60 * time.Second, found: true},
		{message: "Please retry in 1.5s.", want: 1500 * time.Millisecond, found: true},
		{message: "internal error", found: false},
	}

	for _, tt := range tests {
		got, found := quotaDelay(tt.message)
		if found != tt.found || got != tt.want {
			t.Fatalf("quotaDelay(%q) = %s, %v; want %s, %v", tt.message, got, found, tt.want, tt.found)
		}
	}
}
