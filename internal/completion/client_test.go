package completion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		BaseURL:        server.URL,
		PAT:            "test-pat",
		UserID:         "meta",
		AppID:          "Llama-2",
		ModelID:        "llama2-13b-chat",
		ModelVersionID: "v1",
	}, discardLogger())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestCompleteSendsPromptAndReturnsText(t *testing.T) {
	var gotPath, gotAuth, gotPrompt string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")

		var req outputsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Inputs) == 1 {
			gotPrompt = req.Inputs[0].Data.Text.Raw
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":{"code":10000,"description":"Ok"},"outputs":[{"status":{"code":10000},"data":{"text":{"raw":"Dear Bob, ..."}}}]}`))
	})

	got, err := client.Complete(context.Background(), "write to Bob")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "Dear Bob, ..." {
		t.Errorf("text = %q", got)
	}
	if gotPath != "/v2/users/meta/apps/Llama-2/models/llama2-13b-chat/versions/v1/outputs" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Key test-pat" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotPrompt != "write to Bob" {
		t.Errorf("prompt = %q", gotPrompt)
	}
}

func TestCompleteErrorStatuses(t *testing.T) {
	tests := []struct {
		name            string
		status          int
		body            string
		wantCode        int
		wantDescription string
	}{
		{
			name:            "http error with clarifai status",
			status:          http.StatusUnauthorized,
			body:            `{"status":{"code":11102,"description":"Invalid API key or Invalid API key/application pair"}}`,
			wantCode:        11102,
			wantDescription: "Invalid API key",
		},
		{
			name:            "http error with plain body",
			status:          http.StatusBadGateway,
			body:            `upstream down`,
			wantDescription: "upstream down",
		},
		{
			name:            "ok transport but failed status",
			status:          http.StatusOK,
			body:            `{"status":{"code":21200,"description":"Model does not exist","details":"llama"}}`,
			wantCode:        21200,
			wantDescription: "Model does not exist: llama",
		},
		{
			name:            "no outputs",
			status:          http.StatusOK,
			body:            `{"status":{"code":10000,"description":"Ok"},"outputs":[]}`,
			wantCode:        10000,
			wantDescription: "empty response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			text, err := client.Complete(context.Background(), "prompt")
			if text != "" {
				t.Errorf("expected empty text on failure, got %q", text)
			}

			var remoteErr *RemoteGenerationError
			if !errors.As(err, &remoteErr) {
				t.Fatalf("expected RemoteGenerationError, got %v", err)
			}
			if remoteErr.HTTPStatus != tt.status {
				t.Errorf("HTTPStatus = %d, want %d", remoteErr.HTTPStatus, tt.status)
			}
			if remoteErr.Code != tt.wantCode {
				t.Errorf("Code = %d, want %d", remoteErr.Code, tt.wantCode)
			}
			if !strings.Contains(remoteErr.Description, tt.wantDescription) {
				t.Errorf("Description = %q, want it to contain %q", remoteErr.Description, tt.wantDescription)
			}
		})
	}
}

func TestCompleteUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	client, err := NewClient(Config{BaseURL: baseURL, PAT: "p", UserID: "u", AppID: "a", ModelID: "m"}, discardLogger())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.Complete(context.Background(), "prompt")
	var remoteErr *RemoteGenerationError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteGenerationError, got %v", err)
	}
	if remoteErr.HTTPStatus != 0 || remoteErr.Err == nil {
		t.Errorf("expected transport failure, got %+v", remoteErr)
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	if _, err := NewClient(Config{UserID: "u", AppID: "a", ModelID: "m"}, discardLogger()); err == nil {
		t.Fatalf("expected error without PAT")
	}
	if _, err := NewClient(Config{PAT: "p"}, discardLogger()); err == nil {
		t.Fatalf("expected error without model ids")
	}
}

func TestEndpointWithoutVersion(t *testing.T) {
	client, err := NewClient(Config{PAT: "p", UserID: "meta", AppID: "Llama-2", ModelID: "llama2-13b-chat"}, discardLogger())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	want := DefaultBaseURL + "/v2/users/meta/apps/Llama-2/models/llama2-13b-chat/outputs"
	if client.endpoint != want {
		t.Fatalf("endpoint = %q, want %q", client.endpoint, want)
	}
}
