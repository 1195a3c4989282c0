package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lukman83/promobot/internal/models"
)

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("PROMO_KEYWORDS", "fone, air fryer ,,notebook")
	t.Setenv("PROMO_CHANNELS", "telegram,Twitter")
	t.Setenv("PROMO_SEND_DELAY", "2s")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("RATE_BURST", "9")

	c := DefaultConfig()
	if err := c.LoadFromEnv(); err != nil {
		t.Fatal(err)
	}
	if len(c.Keywords) != 3 || c.Keywords[1] != "air fryer" {
		t.Errorf("unexpected keywords %q", c.Keywords)
	}
	if !c.ChannelEnabled(models.ChannelTwitter) || c.ChannelEnabled(models.ChannelWhatsApp) {
		t.Errorf("unexpected channels %v", c.Channels)
	}
	if c.SendDelay != 2*time.Second || c.TelegramBotToken != "tok" || c.RateBurst != 9 {
		t.Errorf("env not applied: %+v", c)
	}
}

func TestLoadFromEnvRejectsBadValues(t *testing.T) {
	t.Setenv("PROMO_CHANNELS", "telegram,fax")
	t.Setenv("PROMO_SEND_DELAY", "soon")
	c := DefaultConfig()
	if err := c.LoadFromEnv(); err == nil {
		t.Fatal("expected error")
	}
	if len(c.Channels) != len(models.Channels) || c.SendDelay != 5*time.Second {
		t.Error("defaults should survive invalid values")
	}
}

func TestValidate(t *testing.T) {
	c := DefaultConfig()
	if err := c.Validate(); err == nil {
		t.Fatal("expected missing keywords error")
	}
	c.Keywords = []string{"fone"}
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestResolveKeywordsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	data := "keywords:\n  - Fone\n  - air fryer\n  - \"  \"\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	c := DefaultConfig()
	c.Keywords = []string{"fone", "notebook"}
	c.KeywordsFile = path
	if err := c.ResolveKeywords(); err != nil {
		t.Fatal(err)
	}
	want := []string{"fone", "notebook", "air fryer"}
	if len(c.Keywords) != len(want) {
		t.Fatalf("got %q, want %q", c.Keywords, want)
	}
	for i := range want {
		if c.Keywords[i] != want[i] {
			t.Errorf("keywords[%d] = %q, want %q", i, c.Keywords[i], want[i])
		}
	}
}

func TestParseKeywordsInvalidYAML(t *testing.T) {
	if _, err := ParseKeywords([]byte("keywords: [unterminated")); err == nil {
		t.Fatal("expected parse error")
	}
}
