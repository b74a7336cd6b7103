// internal/workers/publishing/publish-post/telegram.go
package publishpost

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"ai-post-scheduler/internal/common/errors"
	"ai-post-scheduler/internal/common/logger"
	"ai-post-scheduler/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// telegramCaptionLimit is the Bot API limit for photo captions.
const telegramCaptionLimit = 1024

// TelegramSender is the part of *tgbotapi.BotAPI the publisher uses.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramPublisher posts feed items as photos to a channel or chat.
type TelegramPublisher struct {
	bot    TelegramSender
	chatID int64
	logger logger.Logger
	now    func() time.Time
}

// NewTelegramPublisher authenticates the bot; the Bot API is queried once.
func NewTelegramPublisher(config *TelegramConfig, log logger.Logger) (*TelegramPublisher, error) {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	endpoint := config.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	bot, err := tgbotapi.NewBotAPIWithClient(config.BotToken, endpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, errors.NewPublishFatalError(PlatformTelegram, fmt.Errorf("authenticate bot: %w", err))
	}
	return NewTelegramPublisherWithSender(bot, config.ChatID, log), nil
}

func NewTelegramPublisherWithSender(bot TelegramSender, chatID int64, log logger.Logger) *TelegramPublisher {
	return &TelegramPublisher{
		bot:    bot,
		chatID: chatID,
		logger: log.WithFields(map[string]interface{}{"platform": PlatformTelegram}),
		now:    time.Now,
	}
}

func (p *TelegramPublisher) Name() string {
	return PlatformTelegram
}

func (p *TelegramPublisher) Publish(ctx context.Context, asset *models.GeneratedAsset, caption models.Caption, postType models.PostType) (*Result, error) {
	if postType == models.PostTypeStory {
		return nil, errors.NewPublishFatalError(PlatformTelegram, stderrors.New("stories are not supported"))
	}

	prepared, err := PrepareImage(asset.Image, postType)
	if err != nil {
		return nil, err
	}

	photo := tgbotapi.NewPhoto(p.chatID, tgbotapi.FileBytes{
		Name:  asset.Request.ID + ".jpg",
		Bytes: prepared,
	})
	photo.Caption = truncateRunes(caption.Text(), telegramCaptionLimit)

	type sendResult struct {
		msg tgbotapi.Message
		err error
	}
	done := make(chan sendResult, 1)
	go func() {
		msg, err := p.bot.Send(photo)
		done <- sendResult{msg: msg, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return nil, p.classify(res.err)
		}
		return &Result{
			Platform:    PlatformTelegram,
			MediaID:     strconv.Itoa(res.msg.MessageID),
			PostType:    postType,
			PublishedAt: p.now().UTC(),
		}, nil
	}
}

func (p *TelegramPublisher) classify(err error) error {
	var apiErr *tgbotapi.Error
	if !stderrors.As(err, &apiErr) {
		// transport failure
		return errors.NewPublishFailedError(PlatformTelegram, err)
	}

	if apiErr.Code == http.StatusTooManyRequests || apiErr.RetryAfter > 0 || apiErr.Code >= 500 {
		return errors.NewPublishFailedError(PlatformTelegram, err).
			WithMetadata("retryAfterSeconds", apiErr.RetryAfter)
	}
	return errors.NewPublishFatalError(PlatformTelegram, err).
		WithMetadata("apiCode", apiErr.Code)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
