package app

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"leetcode_leaderboard/internal/aggregate"
	"leetcode_leaderboard/internal/leetcode"
	"leetcode_leaderboard/internal/notifications"
	"leetcode_leaderboard/internal/sheets"
	"leetcode_leaderboard/internal/stats"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds every runtime setting, read once from the environment.
type Config struct {
	RosterDir       string
	SnapshotPath    string
	Port            string
	RefreshInterval time.Duration

	GraphQLURL      string
	ProfilePrefix   string
	RecentLimit     int
	LeetCodeTimeout time.Duration

	NtfyEnabled  bool
	NtfyURL      string
	NtfyTopic    string
	NtfyPriority string

	SpreadsheetID    string
	SpreadsheetRange string
	CredentialsFile  string
}

// SetupEnvironment loads .env file and configures zerolog output and log level.
func SetupEnvironment() {
	// Load .env file if it exists
	err := godotenv.Load()

	// Configure logging
	production := os.Getenv("ENV") == "production"
	if production {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = log.Output(os.Stderr)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	levelStr := strings.ToLower(os.Getenv("LOGLEVEL"))
	level, known := parseLevel(levelStr, production)
	zerolog.SetGlobalLevel(level)
	if !known {
		log.Warn().Msgf("Unknown LOGLEVEL '%s', defaulting to info.", levelStr)
	}

	// wait until now to report on the .env file so we have the chance to set up logging first
	if err == nil {
		log.Debug().Msg("Loaded environment variables from .env file.")
	} else {
		log.Debug().Msg("No .env file found or error loading .env file; proceeding with existing environment variables.")
	}
}

func parseLevel(levelStr string, production bool) (zerolog.Level, bool) {
	switch levelStr {
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "fatal":
		return zerolog.FatalLevel, true
	case "panic":
		return zerolog.PanicLevel, true
	case "disabled":
		return zerolog.Disabled, true
	case "":
		// Default based on environment
		if production {
			return zerolog.WarnLevel, true
		}
		return zerolog.InfoLevel, true
	default:
		return zerolog.InfoLevel, false
	}
}

// LoadConfig reads Config from the environment, applying defaults.
func LoadConfig() Config {
	cfg := Config{
		RosterDir:       GetEnvWithDefault("ROSTER_DIR", "."),
		SnapshotPath:    GetEnvWithDefault("SNAPSHOT_PATH", "data.json"),
		Port:            GetEnvWithDefault("PORT", "3001"),
		RefreshInterval: getEnvAsDuration("REFRESH_INTERVAL", time.Hour),

		GraphQLURL:      GetEnvWithDefault("LEETCODE_GRAPHQL_URL", leetcode.DefaultEndpoint),
		ProfilePrefix:   GetEnvWithDefault("PROFILE_URL_PREFIX", stats.DefaultProfilePrefix),
		RecentLimit:     getEnvAsInt("RECENT_SUBMISSIONS_LIMIT", stats.DefaultRecentLimit),
		LeetCodeTimeout: getEnvAsDuration("LEETCODE_HTTP_TIMEOUT", 0),

		NtfyEnabled:  GetEnvWithDefault("NTFY_ENABLED", "false") == "true",
		NtfyURL:      GetEnvWithDefault("NTFY_URL", "https://ntfy.sh"),
		NtfyTopic:    GetEnvWithDefault("NTFY_TOPIC", "leetcode-leaderboard"),
		NtfyPriority: GetEnvWithDefault("NTFY_PRIORITY", "default"),

		SpreadsheetID:    os.Getenv("SPREADSHEET_ID"),
		SpreadsheetRange: GetEnvWithDefault("SPREADSHEET_RANGE", "Leaderboard!A1"),
		CredentialsFile:  GetEnvWithDefault("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
	}

	if cfg.RefreshInterval <= 0 {
		log.Warn().Dur("interval", cfg.RefreshInterval).Msg("REFRESH_INTERVAL must be positive, using 1h")
		cfg.RefreshInterval = time.Hour
	}

	log.Debug().
		Str("roster_dir", cfg.RosterDir).
		Str("snapshot_path", cfg.SnapshotPath).
		Str("port", cfg.Port).
		Dur("refresh_interval", cfg.RefreshInterval).
		Msg("Configuration loaded")

	return cfg
}

// GetEnvWithDefault fetches an environment variable with a default fallback.
func GetEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		if os.Getenv(key) != "" {
			log.Warn().Str("key", key).Msg("Invalid integer, using default")
		}
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		log.Warn().Str("key", key).Str("value", raw).Msg("Invalid duration, using default")
		return defaultValue
	}
	return value
}

// InitializeClients creates the LeetCode client and the aggregator that fans out over it.
func InitializeClients(cfg Config) (*leetcode.Client, *aggregate.Aggregator) {
	log.Debug().Msg("Initializing clients")

	leetcodeClient := leetcode.NewClient(cfg.GraphQLURL, cfg.LeetCodeTimeout)
	fetcher := stats.NewFetcher(leetcodeClient, cfg.ProfilePrefix, cfg.RecentLimit)

	log.Debug().Msg("Clients initialized successfully")
	return leetcodeClient, aggregate.New(fetcher)
}

// InitializeSheetsPublisher returns nil when no spreadsheet is configured.
func InitializeSheetsPublisher(ctx context.Context, cfg Config) *sheets.Publisher {
	if cfg.SpreadsheetID == "" {
		log.Debug().Msg("SPREADSHEET_ID not set, sheet mirror disabled")
		return nil
	}

	sheetsClient, err := sheets.NewClient(ctx, cfg.CredentialsFile)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create sheets client, sheet mirror disabled")
		return nil
	}

	log.Info().Str("spreadsheet_id", cfg.SpreadsheetID).Msg("Sheet mirror enabled")
	return sheets.NewPublisher(sheetsClient, cfg.SpreadsheetID, cfg.SpreadsheetRange)
}

// InitializeNotificationClient creates and returns the notification client
func InitializeNotificationClient(cfg Config) *notifications.Client {
	log.Debug().
		Bool("enabled", cfg.NtfyEnabled).
		Str("base_url", cfg.NtfyURL).
		Str("topic", cfg.NtfyTopic).
		Msg("Initializing notification client")

	client := notifications.NewClient(cfg.NtfyURL, cfg.NtfyTopic, cfg.NtfyEnabled, cfg.NtfyPriority, 3, time.Second, 30*time.Second)

	if cfg.NtfyEnabled {
		log.Info().Str("topic", cfg.NtfyTopic).Msg("Notifications enabled")
	} else {
		log.Debug().Msg("Notifications disabled")
	}

	return client
}
