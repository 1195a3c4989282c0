package publisher

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"github.com/lukman83/promobot/internal/models"
)

const (
	DefaultTelegramBaseURL = "https://api.telegram.org"
	telegramCaptionLimit   = 1024
)

type TelegramOptions struct {
	BaseURL  string
	BotToken string
	ChatID   string
}

// Telegram sends through the Bot API.
type Telegram struct {
	opts   TelegramOptions
	bot    *bot.Bot
	newErr error
}

// NewTelegram builds the Bot API client on top of client, so sends share the
// process-wide rate limiter. No request is made until Send.
func NewTelegram(client *http.Client, opts TelegramOptions) *Telegram {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultTelegramBaseURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	t := &Telegram{opts: opts}
	if opts.BotToken == "" {
		return t
	}

	botOpts := []bot.Option{
		bot.WithServerURL(opts.BaseURL),
		bot.WithSkipGetMe(),
	}
	if client != nil {
		botOpts = append(botOpts, bot.WithHTTPClient(time.Minute, client))
	}
	t.bot, t.newErr = bot.New(opts.BotToken, botOpts...)
	return t
}

func (t *Telegram) Channel() models.Channel { return models.ChannelTelegram }

func (t *Telegram) Configured() bool {
	return t.opts.BotToken != "" && t.opts.ChatID != ""
}

// Send posts a photo with caption when the product has an image and the text
// fits a caption, otherwise a plain message.
func (t *Telegram) Send(ctx context.Context, p models.Product, text string) (string, error) {
	if t.bot == nil {
		if t.newErr != nil {
			return "", fmt.Errorf("telegram client: %w", t.newErr)
		}
		return "", ErrNotConfigured
	}

	var (
		msg *tgmodels.Message
		err error
	)
	if p.ImageURL != "" && len([]rune(text)) <= telegramCaptionLimit {
		msg, err = t.bot.SendPhoto(ctx, &bot.SendPhotoParams{
			ChatID:    t.opts.ChatID,
			Photo:     &tgmodels.InputFileString{Data: p.ImageURL},
			Caption:   text,
			ParseMode: tgmodels.ParseModeHTML,
		})
		if err != nil {
			return "", fmt.Errorf("telegram sendPhoto: %w", err)
		}
	} else {
		msg, err = t.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    t.opts.ChatID,
			Text:      text,
			ParseMode: tgmodels.ParseModeHTML,
		})
		if err != nil {
			return "", fmt.Errorf("telegram sendMessage: %w", err)
		}
	}
	return strconv.Itoa(msg.ID), nil
}
