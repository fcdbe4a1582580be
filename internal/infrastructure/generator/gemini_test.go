package generator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hszk-dev/chapterize/internal/domain/model"
	"github.com/hszk-dev/chapterize/internal/domain/repository"
)

const validChapterJSON = `[
	{"start": 0, "end": 42.5, "significance": "very_significant", "chapter": "Intro", "summary": "Opening remarks."},
	{"start": 42.5, "end": 180, "significance": "significant", "chapter": "Main topic", "summary": "Core discussion."}
]`

// newProviderServer fakes the OpenAI-compatible chat completions endpoint,
// returning content as the assistant message.
func newProviderServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q, want Bearer test-key", got)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[1].Role != "user" {
			t.Errorf("expected system+user messages, got %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("failed to encode response: %v", err)
		}
	}))
}

func newTestClient(baseURL string) *Client {
	return NewClient(ClientConfig{
		APIKey:  "test-key",
		BaseURL: baseURL,
	})
}

func TestClient_Generate_Success(t *testing.T) {
	srv := newProviderServer(t, http.StatusOK, validChapterJSON)
	defer srv.Close()

	client := newTestClient(srv.URL)

	chapters, err := client.Generate(context.Background(), "hello and welcome back")
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}

	if len(chapters) != 2 {
		t.Fatalf("Generate() returned %d chapters, want 2", len(chapters))
	}
	want := model.Chapter{Start: 0, End: 42.5, Significance: model.SignificanceVeryHigh, Chapter: "Intro", Summary: "Opening remarks."}
	if chapters[0] != want {
		t.Errorf("chapters[0] = %+v, want %+v", chapters[0], want)
	}
}

func TestClient_Generate_FencedOutput(t *testing.T) {
	srv := newProviderServer(t, http.StatusOK, "```json\n"+validChapterJSON+"\n```")
	defer srv.Close()

	client := newTestClient(srv.URL)

	chapters, err := client.Generate(context.Background(), "transcript")
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}
	if len(chapters) != 2 {
		t.Errorf("Generate() returned %d chapters, want 2", len(chapters))
	}
}

func TestClient_Generate_MalformedOutput(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"prose instead of JSON", "Here are your chapters! 1. Intro..."},
		{"empty array", "[]"},
		{"wrong shape", `{"chapters": []}`},
		{"unknown significance", `[{"start": 0, "end": 10, "significance": "crucial", "chapter": "A", "summary": "B"}]`},
		{"end before start", `[{"start": 20, "end": 10, "significance": "significant", "chapter": "A", "summary": "B"}]`},
		{"unknown field", `[{"start": 0, "end": 10, "significance": "significant", "chapter": "A", "summary": "B", "confidence": 0.9}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newProviderServer(t, http.StatusOK, tt.content)
			defer srv.Close()

			client := newTestClient(srv.URL)

			_, err := client.Generate(context.Background(), "transcript")
			if !errors.Is(err, repository.ErrGenerationFailed) {
				t.Errorf("Generate() error = %v, want ErrGenerationFailed", err)
			}
		})
	}
}

func TestClient_Generate_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	_, err := client.Generate(context.Background(), "transcript")
	if !errors.Is(err, repository.ErrGenerationFailed) {
		t.Errorf("Generate() error = %v, want ErrGenerationFailed", err)
	}
}

func TestClient_Generate_ContextCancelled(t *testing.T) {
	srv := newProviderServer(t, http.StatusOK, validChapterJSON)
	defer srv.Close()

	client := newTestClient(srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Generate(ctx, "transcript")
	if !errors.Is(err, repository.ErrGenerationFailed) {
		t.Errorf("Generate() error = %v, want ErrGenerationFailed", err)
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `[1]`, `[1]`},
		{"json fence", "```json\n[1]\n```", `[1]`},
		{"bare fence", "```\n[1]\n```", `[1]`},
		{"surrounding whitespace", "  ```json\n[1]\n```  ", `[1]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFence(tt.in); got != tt.want {
				t.Errorf("stripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
