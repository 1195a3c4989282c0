package publisher

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/lukman83/promobot/internal/httputil"
	"github.com/lukman83/promobot/internal/models"
)

const DefaultTwitterBaseURL = "https://api.twitter.com"

type TwitterOptions struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
}

// Twitter posts tweets through the v2 API with OAuth1 user context.
type Twitter struct {
	client     *http.Client
	baseURL    string
	signer     RequestSigner
	configured bool
}

func NewTwitter(client *http.Client, opts TwitterOptions) *Twitter {
	signer := &OAuth1Signer{
		ConsumerKey:    opts.ConsumerKey,
		ConsumerSecret: opts.ConsumerSecret,
		Token:          opts.AccessToken,
		TokenSecret:    opts.AccessSecret,
	}
	configured := opts.ConsumerKey != "" && opts.ConsumerSecret != "" &&
		opts.AccessToken != "" && opts.AccessSecret != ""
	return NewTwitterWithSigner(client, opts.BaseURL, signer, configured)
}

// NewTwitterWithSigner allows swapping the request signer.
func NewTwitterWithSigner(client *http.Client, baseURL string, signer RequestSigner, configured bool) *Twitter {
	if baseURL == "" {
		baseURL = DefaultTwitterBaseURL
	}
	return &Twitter{
		client:     client,
		baseURL:    strings.TrimRight(baseURL, "/"),
		signer:     signer,
		configured: configured && signer != nil,
	}
}

func (t *Twitter) Channel() models.Channel { return models.ChannelTwitter }

func (t *Twitter) Configured() bool { return t.configured }

type tweetResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (t *Twitter) Send(ctx context.Context, p models.Product, text string) (string, error) {
	u := t.baseURL + "/2/tweets"
	auth, err := t.signer.Sign(http.MethodPost, u, nil)
	if err != nil {
		return "", fmt.Errorf("sign tweet request: %w", err)
	}
	h := http.Header{}
	h.Set("Authorization", auth)

	var resp tweetResponse
	if err := httputil.PostJSON(ctx, t.client, u, h, map[string]string{"text": text}, &resp); err != nil {
		return "", fmt.Errorf("twitter create tweet: %w", err)
	}
	if resp.Data.ID == "" {
		return "", fmt.Errorf("twitter create tweet: no id in response")
	}
	return resp.Data.ID, nil
}
