package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/wwwmplusm/goaltrack/internal/bot"
	"github.com/wwwmplusm/goaltrack/internal/lockfile"
	"github.com/wwwmplusm/goaltrack/internal/store"
	"github.com/wwwmplusm/goaltrack/internal/transcribe"
	"github.com/wwwmplusm/goaltrack/internal/twiliowhatsapp"
	"github.com/wwwmplusm/goaltrack/internal/util"
	"github.com/wwwmplusm/goaltrack/internal/whatsapp"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for GoalTrack state data
	DefaultStateDir = "/var/lib/goaltrack"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "goaltrack.db"
)

func main() {
	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)
	initializeLogger(*flags.debug)

	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	// One bot process per state directory: two instances would fight over
	// the same WhatsApp device session.
	lock, err := lockfile.AcquireLock(*flags.stateDir)
	if err != nil {
		slog.Error("Failed to acquire state directory lock", "error", err)
		os.Exit(1)
	}
	defer lock.Release()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storeOpts := buildStoreOptions(flags)
	waOpts := buildWhatsAppOptions(flags)
	twilioOpts := buildTwilioOptions(flags)
	trOpts := buildTranscribeOptions(flags)
	botOpts := buildBotOptions(flags)

	slog.Info("Bootstrapping GoalTrack with configured modules")
	slog.Debug("Final configuration", "state_dir", *flags.stateDir, "dsn_set", *flags.dbDSN != "", "transport", *flags.transport)
	if err := bot.Run(ctx, storeOpts, waOpts, twilioOpts, trOpts, botOpts...); err != nil {
		slog.Error("GoalTrack failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("GoalTrack exited successfully")
}

// Config holds environment configuration
type Config struct {
	StateDir    string
	DatabaseURL string
	WhatsAppDSN string
	OpenAIKey   string
	Transport   string
	WebhookAddr string
	Debug       bool
}

// Flags holds command line flag values
type Flags struct {
	qrOutput    *string
	numeric     *bool
	stateDir    *string
	dbDSN       *string
	waDSN       *string
	openaiKey   *string
	transport   *string
	webhookAddr *string
	debug       *bool
}

// initializeLogger sets up structured logging
func initializeLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	config := Config{
		StateDir:    os.Getenv("GOALTRACK_STATE_DIR"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		WhatsAppDSN: os.Getenv("WHATSAPP_DB_DSN"),
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		Transport:   os.Getenv("GOALTRACK_TRANSPORT"),
		WebhookAddr: os.Getenv("WEBHOOK_ADDR"),
		Debug:       util.ParseBoolEnv("GOALTRACK_DEBUG", false),
	}

	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
	}

	// Profile storage defaults to SQLite in the state directory.
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
	}

	// The whatsmeow session store shares the profile database unless
	// configured separately.
	if config.WhatsAppDSN == "" {
		config.WhatsAppDSN = config.DatabaseURL
	}

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		qrOutput:    flag.String("qr-output", "", "path to write login QR code"),
		numeric:     flag.Bool("numeric-code", false, "use numeric login code instead of QR code"),
		stateDir:    flag.String("state-dir", config.StateDir, "state directory for GoalTrack data (overrides $GOALTRACK_STATE_DIR)"),
		dbDSN:       flag.String("db-dsn", config.DatabaseURL, "database DSN for profile storage (overrides $DATABASE_URL)"),
		waDSN:       flag.String("whatsapp-db-dsn", config.WhatsAppDSN, "database DSN for the WhatsApp session store (overrides $WHATSAPP_DB_DSN)"),
		openaiKey:   flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key for voice note transcription (overrides $OPENAI_API_KEY)"),
		transport:   flag.String("transport", config.Transport, "messaging transport: whatsapp or twilio (overrides $GOALTRACK_TRANSPORT)"),
		webhookAddr: flag.String("webhook-addr", config.WebhookAddr, "listen address for the Twilio inbound webhook (overrides $WEBHOOK_ADDR)"),
		debug:       flag.Bool("debug", config.Debug, "enable debug logging (overrides $GOALTRACK_DEBUG)"),
	}

	flag.Parse()

	// Follow an overridden state directory when the DSN was left at its
	// derived default.
	if *flags.stateDir != config.StateDir && *flags.dbDSN == filepath.Join(config.StateDir, DefaultDBFileName) {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		if *flags.waDSN == config.WhatsAppDSN {
			*flags.waDSN = *flags.dbDSN
		}
	}

	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	if store.DetectDSNType(*flags.dbDSN) == "postgres" {
		return nil
	}
	stateDir := filepath.Dir(*flags.dbDSN)
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return err
	}
	return nil
}

// buildStoreOptions constructs store configuration options
func buildStoreOptions(flags Flags) []store.Option {
	var storeOpts []store.Option
	if *flags.dbDSN != "" {
		if store.DetectDSNType(*flags.dbDSN) == "postgres" {
			storeOpts = append(storeOpts, store.WithPostgresDSN(*flags.dbDSN))
		} else {
			storeOpts = append(storeOpts, store.WithSQLiteDSN(*flags.dbDSN))
		}
	}
	return storeOpts
}

// buildWhatsAppOptions constructs WhatsApp configuration options
func buildWhatsAppOptions(flags Flags) []whatsapp.Option {
	var waOpts []whatsapp.Option
	if *flags.qrOutput != "" {
		waOpts = append(waOpts, whatsapp.WithQRCodeOutput(*flags.qrOutput))
	}
	if *flags.numeric {
		waOpts = append(waOpts, whatsapp.WithNumericCode())
	}
	if *flags.waDSN != "" {
		waOpts = append(waOpts, whatsapp.WithDBDSN(*flags.waDSN))
	}
	return waOpts
}

// buildTwilioOptions constructs Twilio configuration options.
// Credentials come from the environment inside the Twilio client itself.
func buildTwilioOptions(flags Flags) []twiliowhatsapp.Option {
	return nil
}

// buildTranscribeOptions constructs transcription configuration options
func buildTranscribeOptions(flags Flags) []transcribe.Option {
	var trOpts []transcribe.Option
	if *flags.openaiKey != "" {
		trOpts = append(trOpts, transcribe.WithAPIKey(*flags.openaiKey))
	}
	return trOpts
}

// buildBotOptions constructs bot composition options
func buildBotOptions(flags Flags) []bot.Option {
	var botOpts []bot.Option
	if *flags.transport != "" {
		botOpts = append(botOpts, bot.WithTransport(*flags.transport))
	}
	if *flags.webhookAddr != "" {
		botOpts = append(botOpts, bot.WithWebhookAddr(*flags.webhookAddr))
	}
	return botOpts
}
