package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"grafica-energia/internal/config"
	"grafica-energia/internal/dataset"
	"grafica-energia/internal/infra/retry"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const testToken = "123:abc"

type fakeTelegram struct {
	mu          sync.Mutex
	failFirst   int // number of sendPhoto calls answered with 429
	photoCalls  int
	lastCaption string
	lastChatID  string
	lastFile    []byte
}

func (f *fakeTelegram) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/bot" + testToken + "/getMe":
			fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Energy","username":"energy_bot"}}`)
		case "/bot" + testToken + "/sendPhoto":
			if err := r.ParseMultipartForm(10 << 20); err != nil {
				t.Errorf("failed to parse upload: %v", err)
			}
			f.mu.Lock()
			defer f.mu.Unlock()
			f.photoCalls++
			if f.photoCalls <= f.failFirst {
				w.WriteHeader(http.StatusTooManyRequests)
				fmt.Fprint(w, `{"ok":false,"error_code":429,"description":"Too Many Requests: retry later","parameters":{"retry_after":0}}`)
				return
			}
			f.lastCaption = r.FormValue("caption")
			f.lastChatID = r.FormValue("chat_id")
			if file, _, err := r.FormFile("photo"); err == nil {
				f.lastFile, _ = io.ReadAll(file)
				file.Close()
			}
			fmt.Fprint(w, `{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":-1001,"type":"channel"}}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"ok":false,"error_code":404,"description":"Not Found"}`)
		}
	})
}

func newTestPublisher(t *testing.T, fake *fakeTelegram) *Publisher {
	t.Helper()
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	pub, err := NewPublisher(config.TelegramConfig{
		BotToken:    testToken,
		ChatID:      "-1001",
		APIEndpoint: srv.URL + "/bot%s/%s",
		MaxRetries:  2,
	})
	if err != nil {
		t.Fatalf("NewPublisher failed: %v", err)
	}
	pub.retry.BaseDelay = 1
	return pub
}

func writeChart(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "grafica_energia.png")
	if err := os.WriteFile(path, []byte("\x89PNG fake"), 0644); err != nil {
		t.Fatalf("failed to write chart: %v", err)
	}
	return path
}

func TestSendChartUploadsPhoto(t *testing.T) {
	fake := &fakeTelegram{}
	pub := newTestPublisher(t, fake)

	if err := pub.SendChart(context.Background(), writeChart(t), "Energía"); err != nil {
		t.Fatalf("SendChart failed: %v", err)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if fake.photoCalls != 1 {
		t.Fatalf("expected 1 upload, got %d", fake.photoCalls)
	}
	if fake.lastChatID != "-1001" || fake.lastCaption != "Energía" {
		t.Fatalf("unexpected form values chat=%q caption=%q", fake.lastChatID, fake.lastCaption)
	}
	if string(fake.lastFile) != "\x89PNG fake" {
		t.Fatalf("unexpected uploaded file %q", fake.lastFile)
	}
}

func TestSendChartRetriesTooManyRequests(t *testing.T) {
	fake := &fakeTelegram{failFirst: 1}
	pub := newTestPublisher(t, fake)

	if err := pub.SendChart(context.Background(), writeChart(t), "retry"); err != nil {
		t.Fatalf("SendChart failed: %v", err)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if fake.photoCalls != 2 {
		t.Fatalf("expected 2 uploads, got %d", fake.photoCalls)
	}
}

func TestAsRetryErrorStatus(t *testing.T) {
	tests := []struct {
		name      string
		resp      *tgbotapi.APIResponse
		err       error
		wantCode  int
		retryable bool
	}{
		{"upload error code from response", &tgbotapi.APIResponse{ErrorCode: 429}, &tgbotapi.Error{Message: "Too Many Requests"}, 429, true},
		{"retry after without code", nil, &tgbotapi.Error{Message: "slow down", ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 3}}, 429, true},
		{"server error", &tgbotapi.APIResponse{ErrorCode: 502}, &tgbotapi.Error{Message: "Bad Gateway"}, 502, true},
		{"bad request", &tgbotapi.APIResponse{ErrorCode: 400}, &tgbotapi.Error{Code: 400, Message: "Bad Request"}, 400, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := asRetryError(tt.resp, tt.err)
			httpErr, ok := err.(*retry.HTTPError)
			if !ok {
				t.Fatalf("expected *retry.HTTPError, got %T", err)
			}
			if httpErr.StatusCode != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, httpErr.StatusCode)
			}
			if retry.IsRetryable(err) != tt.retryable {
				t.Errorf("expected retryable=%v for %v", tt.retryable, err)
			}
		})
	}

	if asRetryError(nil, nil) != nil {
		t.Error("expected nil for nil error")
	}
}

func TestNewPublisherRejectsBadChatID(t *testing.T) {
	if _, err := NewPublisher(config.TelegramConfig{BotToken: testToken, ChatID: "chat"}); err == nil {
		t.Fatal("expected error for non numeric chat id")
	}
}

func TestCaption(t *testing.T) {
	got := Caption(dataset.Summary{Rows: 3, TimeStart: 0, TimeEnd: 2, EnergyMin: -0.0001, EnergyMax: 0.00005, RelativeDrift: 0})
	for _, want := range []string{"Puntos: 3", "Tiempo: 0 - 2", "mín -0.0001", "máx 5e-05"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in caption %q", want, got)
		}
	}
}
