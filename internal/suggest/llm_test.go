package suggest

import (
	"context"
	"errors"
	"testing"

	"github.com/user/seo-audit-service/internal/entity"
)

type fakeCompleter struct {
	replies []string
	errs    []error
	calls   int
	lastReq ChatRequest
}

func (f *fakeCompleter) Complete(_ context.Context, req ChatRequest) (string, error) {
	i := f.calls
	f.calls++
	f.lastReq = req
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	return "", errors.New("no reply scripted")
}

const validReply = `{"improved_title":"Better <b>Title</b>","improved_meta_description":"Tom's guide & more",` +
	`"improved_h1":"H","seo_summary":"Sum","suggestions":["<script>alert(1)</script>Do it"]}`

func TestLLMGenerator_Success(t *testing.T) {
	fc := &fakeCompleter{replies: []string{validReply}}
	g := NewLLMGenerator(fc, "gpt-4o-mini", 500, nil).WithBackoff(0)

	got, err := g.Generate(context.Background(), entity.ParsedPage{Title: "Home"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if fc.calls != 1 {
		t.Errorf("calls = %d, want 1", fc.calls)
	}
	if got.ImprovedTitle != "Better Title" {
		t.Errorf("ImprovedTitle = %q, want markup stripped", got.ImprovedTitle)
	}
	if got.ImprovedMetaDescription != "Tom's guide & more" {
		t.Errorf("ImprovedMetaDescription = %q, want entities preserved as text", got.ImprovedMetaDescription)
	}
	if len(got.Suggestions) != 1 || got.Suggestions[0] != "Do it" {
		t.Errorf("Suggestions = %v", got.Suggestions)
	}
	if got.Fallback {
		t.Error("Fallback = true for llm output")
	}

	req := fc.lastReq
	if req.System != SystemPrompt || req.MaxTokens != 500 || req.Temperature != 0 || req.Model != "gpt-4o-mini" {
		t.Errorf("unexpected request: %+v", req)
	}
}

func TestLLMGenerator_RetriesOnce(t *testing.T) {
	tests := []struct {
		name      string
		completer *fakeCompleter
		wantCalls int
		wantErr   error
	}{
		{
			name:      "garbage then valid",
			completer: &fakeCompleter{replies: []string{"not json", validReply}},
			wantCalls: 2,
		},
		{
			name:      "provider error then valid",
			completer: &fakeCompleter{errs: []error{errors.New("503")}, replies: []string{"", validReply}},
			wantCalls: 2,
		},
		{
			name:      "garbage twice",
			completer: &fakeCompleter{replies: []string{"nope", "still nope"}},
			wantCalls: 2,
			wantErr:   ErrUnparsableOutput,
		},
		{
			name:      "missing credentials is not retried",
			completer: &fakeCompleter{errs: []error{ErrNoCredentials}},
			wantCalls: 1,
			wantErr:   ErrNoCredentials,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewLLMGenerator(tt.completer, "m", 0, nil).WithBackoff(0)
			_, err := g.Generate(context.Background(), entity.ParsedPage{})

			if tt.completer.calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", tt.completer.calls, tt.wantCalls)
			}
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			var genErr *GenerationError
			if !errors.As(err, &genErr) {
				t.Fatalf("err = %v, want *GenerationError", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want wrapping %v", err, tt.wantErr)
			}
			if genErr.Attempts != tt.wantCalls {
				t.Errorf("Attempts = %d, want %d", genErr.Attempts, tt.wantCalls)
			}
		})
	}
}

func TestLLMGenerator_NilCompleter(t *testing.T) {
	g := NewLLMGenerator(nil, "gemini-1.5-flash", 500, nil)
	_, err := g.Generate(context.Background(), entity.ParsedPage{})
	if !errors.Is(err, ErrNoCredentials) {
		t.Errorf("err = %v, want ErrNoCredentials", err)
	}
}

func TestLLMGenerator_CancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fc := &fakeCompleter{replies: []string{"garbage"}}
	cancel()

	g := NewLLMGenerator(fc, "m", 0, nil)
	_, err := g.Generate(ctx, entity.ParsedPage{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if fc.calls != 1 {
		t.Errorf("calls = %d, want 1", fc.calls)
	}
}
