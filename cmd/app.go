package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/lukman83/promobot/internal/affiliate"
	"github.com/lukman83/promobot/internal/caption"
	"github.com/lukman83/promobot/internal/copywriter"
	"github.com/lukman83/promobot/internal/httputil"
	"github.com/lukman83/promobot/internal/marketplace"
	"github.com/lukman83/promobot/internal/models"
	"github.com/lukman83/promobot/internal/pipeline"
	"github.com/lukman83/promobot/internal/publisher"
	"github.com/lukman83/promobot/internal/runlock"
	"github.com/lukman83/promobot/internal/source"
	"github.com/lukman83/promobot/internal/store"
	mcpserver "github.com/lukman83/promobot/mcp"
)

const userAgent = "promobot/1.0"

// app holds the wired components for one command invocation.
type app struct {
	client     *http.Client
	sources    *source.Registry
	store      store.Store
	formatter  *caption.Formatter
	generator  copywriter.Generator
	publishers []*publisher.Publisher
	locker     runlock.Locker

	closers []func()
}

type appOptions struct {
	// dryRun uses the in-memory store and logging senders.
	dryRun bool
	// requireDB fails when DATABASE_URL is unset instead of using memory.
	requireDB bool
	// withoutPublishers skips channel and generator wiring.
	withoutPublishers bool
}

func buildApp(ctx context.Context, opts appOptions) (*app, error) {
	a := &app{formatter: caption.NewFormatter(cfg.Locale, cfg.CurrencySymbol)}

	client, err := buildHTTPClient()
	if err != nil {
		return nil, err
	}
	a.client = client
	a.sources = buildSources(client)

	switch {
	case opts.dryRun:
		a.store = store.NewMemoryStore()
	case cfg.DatabaseURL != "":
		pool, err := store.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		a.store = store.NewPostgresStore(pool)
	case opts.requireDB:
		return nil, errors.New("DATABASE_URL is not set")
	default:
		logger.Printf("[app] DATABASE_URL not set, using in-memory store; posted products are forgotten on exit")
		a.store = store.NewMemoryStore()
	}

	a.locker = runlock.Noop{}
	if cfg.RedisAddr != "" && !opts.dryRun {
		rdb, err := runlock.NewRedisClient(ctx, cfg.RedisAddr, "", 0)
		if err != nil {
			logger.Printf("[app] redis unavailable, runs are not locked: %v", err)
		} else {
			a.closers = append(a.closers, func() { rdb.Close() })
			a.locker = runlock.NewRedisLocker(rdb)
		}
	}

	if !opts.withoutPublishers {
		a.generator = copywriter.NewOpenAIGenerator(client, copywriter.OpenAIOptions{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		}, a.formatter)
		a.publishers = buildPublishers(client, a.store, a.formatter, opts.dryRun)
	}
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *app) pipeline() *pipeline.Pipeline {
	return pipeline.New(a.sources, a.store, a.generator, a.publishers, a.locker, pipeline.Options{
		Keywords:    cfg.Keywords,
		Limit:       cfg.SearchLimit,
		SendDelay:   cfg.SendDelay,
		Concurrency: cfg.GenConcurrency,
		LockTTL:     lockTTL(),
	}, logger)
}

func (a *app) toolDeps(runner mcpserver.Runner) mcpserver.Deps {
	return mcpserver.Deps{
		Sources:   a.sources,
		Store:     a.store,
		Formatter: a.formatter,
		Runner:    runner,
		Limit:     cfg.SearchLimit,
	}
}

// buildHTTPClient creates the rate-limited HTTP client shared by every
// outbound call.
func buildHTTPClient() (*http.Client, error) {
	base, err := httputil.NewBaseTransport(cfg.ProxyURL)
	if err != nil {
		return nil, err
	}
	transport := &httputil.LimitedTransport{
		Base:        base,
		RateLimiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst),
		UserAgent:   userAgent,
	}
	return httputil.NewHTTPClient(transport), nil
}

// buildSources registers the adapters in merge priority order.
func buildSources(client *http.Client) *source.Registry {
	reg := source.NewRegistry()
	adapters := []source.Adapter{
		affiliate.New(client, affiliate.Options{
			BaseURL:  cfg.AffiliateBaseURL,
			AppToken: cfg.AffiliateToken,
			SourceID: cfg.AffiliateSourceID,
		}, logger),
		marketplace.New(client, marketplace.Options{
			BaseURL:     cfg.MarketplaceBaseURL,
			Site:        cfg.MarketplaceSite,
			AccessToken: cfg.MarketplaceToken,
		}, logger),
	}
	for _, a := range adapters {
		if err := reg.Register(a); err != nil {
			panic(fmt.Sprintf("register source: %v", err))
		}
	}
	return reg
}

func buildPublishers(client *http.Client, st store.Store, f *caption.Formatter, dryRun bool) []*publisher.Publisher {
	var pubs []*publisher.Publisher
	for _, ch := range models.Channels {
		if !cfg.ChannelEnabled(ch) {
			continue
		}
		var sender publisher.Sender
		switch {
		case dryRun:
			sender = publisher.NewLogSender(ch, logger)
		case ch == models.ChannelTelegram:
			sender = publisher.NewTelegram(client, publisher.TelegramOptions{
				BotToken: cfg.TelegramBotToken,
				ChatID:   cfg.TelegramChatID,
			})
		case ch == models.ChannelWhatsApp:
			sender = publisher.NewWhatsApp(client, publisher.WhatsAppOptions{
				AccessToken:   cfg.WhatsAppToken,
				PhoneNumberID: cfg.WhatsAppPhoneNumberID,
				To:            cfg.WhatsAppTo,
			})
		case ch == models.ChannelTwitter:
			sender = publisher.NewTwitter(client, publisher.TwitterOptions{
				ConsumerKey:    cfg.TwitterAPIKey,
				ConsumerSecret: cfg.TwitterAPISecret,
				AccessToken:    cfg.TwitterAccessToken,
				AccessSecret:   cfg.TwitterAccessSecret,
			})
		}
		if !sender.Configured() {
			logger.Printf("[app] %s enabled but credentials are missing; its sends will be reported as failed", ch)
		}
		pubs = append(pubs, publisher.New(sender, st, f, logger))
	}
	return pubs
}
