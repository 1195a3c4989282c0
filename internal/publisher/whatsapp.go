package publisher

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/lukman83/promobot/internal/httputil"
	"github.com/lukman83/promobot/internal/models"
)

const (
	DefaultWhatsAppBaseURL = "https://graph.facebook.com"
	DefaultWhatsAppVersion = "v21.0"
)

type WhatsAppOptions struct {
	BaseURL       string
	APIVersion    string
	AccessToken   string
	PhoneNumberID string
	To            string
}

// WhatsApp sends text messages through the Cloud API.
type WhatsApp struct {
	client *http.Client
	opts   WhatsAppOptions
}

func NewWhatsApp(client *http.Client, opts WhatsAppOptions) *WhatsApp {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultWhatsAppBaseURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.APIVersion == "" {
		opts.APIVersion = DefaultWhatsAppVersion
	}
	return &WhatsApp{client: client, opts: opts}
}

func (w *WhatsApp) Channel() models.Channel { return models.ChannelWhatsApp }

func (w *WhatsApp) Configured() bool {
	return w.opts.AccessToken != "" && w.opts.PhoneNumberID != "" && w.opts.To != ""
}

type whatsappResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

func (w *WhatsApp) Send(ctx context.Context, p models.Product, text string) (string, error) {
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                w.opts.To,
		"type":              "text",
		"text": map[string]any{
			"body":        text,
			"preview_url": true,
		},
	}
	u := fmt.Sprintf("%s/%s/%s/messages", w.opts.BaseURL, w.opts.APIVersion, w.opts.PhoneNumberID)

	var resp whatsappResponse
	if err := httputil.PostJSON(ctx, w.client, u, httputil.BearerHeader(w.opts.AccessToken), payload, &resp); err != nil {
		return "", fmt.Errorf("whatsapp send: %w", err)
	}
	if len(resp.Messages) == 0 {
		return "", fmt.Errorf("whatsapp send: no message id in response")
	}
	return resp.Messages[0].ID, nil
}
