package notify

// Sends rendered charts to a Telegram chat.
// Calls go through a rate limiter and a circuit breaker and are retried on
// 429/5xx answers.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"grafica-energia/internal/config"
	"grafica-energia/internal/dataset"
	logging "grafica-energia/internal/infra/log"
	"grafica-energia/internal/infra/retry"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Publisher posts chart images to one chat.
type Publisher struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	rateLimiter    *rate.Limiter
	circuitBreaker *gobreaker.CircuitBreaker
	retry          retry.Options
}

// NewPublisher authorizes the bot described by cfg.
func NewPublisher(cfg config.TelegramConfig) (*Publisher, error) {
	chatID, err := cfg.ParsedChatID()
	if err != nil {
		return nil, err
	}

	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, endpoint, &http.Client{Timeout: 60 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telegram bot: %w", err)
	}
	logging.LogSuccess("Telegram bot authorized", zap.String("username", bot.Self.UserName))

	return &Publisher{
		bot:         bot,
		chatID:      chatID,
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 1),
		circuitBreaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "TelegramAPI",
			MaxRequests: 1,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 5
			},
		}),
		retry: retry.Options{
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  500 * time.Millisecond,
			MaxDelay:   30 * time.Second,
		},
	}, nil
}

// SendChart uploads the PNG at path as a photo with caption.
func (p *Publisher) SendChart(ctx context.Context, path, caption string) error {
	startTime := time.Now()

	err := retry.Do(ctx, p.retry, func() error {
		if err := p.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait failed: %w", err)
		}
		var resp *tgbotapi.APIResponse
		_, err := p.circuitBreaker.Execute(func() (interface{}, error) {
			photo := tgbotapi.NewPhoto(p.chatID, tgbotapi.FilePath(path))
			photo.Caption = caption
			var err error
			resp, err = p.bot.Request(photo)
			return resp, err
		})
		return asRetryError(resp, err)
	})
	if err != nil {
		logging.LogError("Failed to send chart", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("failed to send chart: %w", err)
	}

	logging.LogSuccess("Chart sent to Telegram",
		zap.String("path", path),
		zap.Int64("chatID", p.chatID),
		zap.Int64("duration_ms", time.Since(startTime).Milliseconds()))
	return nil
}

// asRetryError maps Telegram API errors to retry.HTTPError.
// Uploads leave tgbotapi.Error.Code unset, so the status comes from the
// decoded response; a bare retry_after is treated as 429.
func asRetryError(resp *tgbotapi.APIResponse, err error) error {
	if err == nil {
		return nil
	}
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	code := apiErr.Code
	if resp != nil && resp.ErrorCode != 0 {
		code = resp.ErrorCode
	}
	if code == 0 && apiErr.RetryAfter > 0 {
		code = http.StatusTooManyRequests
	}
	return &retry.HTTPError{
		StatusCode: code,
		Message:    apiErr.Message,
		RetryAfter: time.Duration(apiErr.RetryAfter) * time.Second,
	}
}

// Caption describes the chart in the language of its axis labels.
func Caption(s dataset.Summary) string {
	return fmt.Sprintf("Energía frente a tiempo\nPuntos: %d\nTiempo: %g - %g\nEnergía: mín %.6g, máx %.6g\nDeriva relativa: %.3e",
		s.Rows, s.TimeStart, s.TimeEnd, s.EnergyMin, s.EnergyMax, s.RelativeDrift)
}
