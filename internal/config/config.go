package config

import (
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	// A helper function to get a required env var. It will fail if the env var is not set.
	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return "" // This line is never reached
	}
	getEnvOrDefault := func(key, fallback string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		return fallback
	}
	getEnvIntOrDefault := func(key string, fallback int) int {
		value, ok := os.LookupEnv(key)
		if !ok {
			return fallback
		}
		parsed, err := strconv.Atoi(value)
		if err != nil {
			log.Fatalf("Error: Environment variable %s must be an integer, got %q.", key, value)
		}
		return parsed
	}

	cfg := Config{
		Port:          getEnv("PORT"),
		DBName:        getEnv("DB_NAME"),
		MigrationsDir: getEnvOrDefault("MIGRATIONS_DIR", "./migrations"),
		Turso: TursoConfig{
			PrimaryURL: getEnvOrDefault("TURSO_PRIMARY_URL", ""),
			AuthToken:  getEnvOrDefault("TURSO_AUTH_TOKEN", ""),
		},
		TTBL: TTBLConfig{
			BaseURL:  getEnvOrDefault("TTBL_BASE_URL", "https://www.ttbl.de"),
			Season:   getEnvOrDefault("TTBL_SEASON", "2025-2026"),
			Gamedays: getEnvIntOrDefault("TTBL_GAMEDAYS", 18),
			DelayMS:  getEnvIntOrDefault("TTBL_DELAY_MS", 1000),
		},
		WTT: WTTConfig{
			BaseURL:     getEnvOrDefault("WTT_BASE_URL", "https://results.ittf.link"),
			ListID:      getEnvOrDefault("WTT_LIST_ID", "31"),
			Year:        getEnvIntOrDefault("WTT_YEAR", 2025),
			PageLimit:   getEnvIntOrDefault("WTT_PAGE_LIMIT", 200),
			DelayMS:     getEnvIntOrDefault("WTT_DELAY_MS", 400),
			RankingsURL: getEnvOrDefault("WTT_RANKINGS_URL", "https://wttcmsapigateway-new.azure-api.net/internalttu/RankingsCurrentWeek/CurrentWeek/GetRankingIndividuals"),
		},
		Stats: StatsConfig{
			MinGames: getEnvIntOrDefault("STATS_MIN_GAMES", 5),
			TopN:     getEnvIntOrDefault("STATS_TOP_N", 20),
		},
		Export: ExportConfig{
			Dir:  getEnvOrDefault("EXPORT_DIR", "./data"),
			Keep: getEnvIntOrDefault("EXPORT_KEEP", 5),
		},
		Slack: SlackConfig{
			Token:         getEnv("SLACK_BOT_TOKEN"),
			ChannelID:     getEnv("SLACK_CHANNEL_ID"),
			SigningSecret: getEnv("SLACK_SIGNING_SECRET"),
		},
		ProjectID: getEnv("GCP_PROJECT"),
		PubSub: PubSubConfig{
			TopicID: getEnvOrDefault("PUBSUB_TOPIC_ID", "ttstats-events"),
		},
	}

	if err := validator.New().Struct(cfg); err != nil {
		log.Fatalf("Invalid configuration: %s", err)
	}
	return cfg
}
