package cmd

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lukman83/promobot/config"
)

var (
	cfg    *config.Config
	logger = log.New(os.Stderr, "", log.LstdFlags)
)

var rootCmd = &cobra.Command{
	Use:          "promobot",
	Short:        "PromoBot - deal search and multi-channel promotion publisher",
	Long:         "Searches partner and marketplace APIs for deals, skips products already posted, writes promotional copy and publishes it to Telegram, WhatsApp and Twitter.",
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentPreRunE = initConfig
	rootCmd.PersistentFlags().String("keywords", "", "Comma-separated search keywords (overrides PROMO_KEYWORDS)")
	rootCmd.PersistentFlags().String("keywords-file", "", "YAML file with a keywords list")
	rootCmd.PersistentFlags().String("channels", "", "Comma-separated channels to publish to: telegram, whatsapp, twitter")
	rootCmd.PersistentFlags().Duration("send-delay", 0, "Pause between consecutive channel calls (default 5s)")
	rootCmd.PersistentFlags().String("proxy-url", "", "Route outbound API calls through this proxy")
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg = config.DefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		return err
	}

	// Override from flags
	flags := rootCmd.PersistentFlags()
	if v, _ := flags.GetString("keywords"); v != "" {
		cfg.Keywords = config.SplitList(v)
	}
	if v, _ := flags.GetString("keywords-file"); v != "" {
		cfg.KeywordsFile = v
	}
	if v, _ := flags.GetString("channels"); v != "" {
		chs, err := config.ParseChannels(v)
		if err != nil {
			return err
		}
		cfg.Channels = chs
	}
	if v, _ := flags.GetDuration("send-delay"); v > 0 {
		cfg.SendDelay = v
	}
	if v, _ := flags.GetString("proxy-url"); v != "" {
		cfg.ProxyURL = v
	}
	return cfg.ResolveKeywords()
}

func lockTTL() time.Duration {
	// A run sends at most MaxCandidates products to three channels with the
	// configured delay in between, plus fetch and generation time.
	return 9*cfg.SendDelay + 5*time.Minute
}
