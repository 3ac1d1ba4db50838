package config

import (
	"os"
	"strconv"

	"github.com/charmbracelet/log"
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

	cfg := Config{
		DBName:        getEnv("DB_NAME"),
		MigrationsDir: "./migrations",
		Slack: SlackConfig{
			Token:         getEnv("SLACK_BOT_TOKEN"),
			ChannelID:     getEnv("SLACK_CHANNEL_ID"),
			SigningSecret: getEnv("SLACK_SIGNING_SECRET"),
		},
		Port: getEnv("PORT"),
		Turso: TursoConfig{
			PrimaryURL: getEnv("TURSO_PRIMARY_URL"),
			AuthToken:  getEnv("TURSO_AUTH_TOKEN"),
		},
		Inngest: InngestConfig{
			AppID:      os.Getenv("INNGEST_APP_ID"),
			SigningKey: os.Getenv("INNGEST_SIGNING_KEY"),
			EventKey:   os.Getenv("INNGEST_EVENT_KEY"),
		},
		ProjectID: getEnv("GCP_PROJECT"),
		League:    loadLeague(),
	}
	return cfg
}

func loadLeague() LeagueConfig {
	return LeagueConfig{
		StartPoolSize:          getEnvInt("START_POOL_SIZE", 10),
		MinPoolForDraft:        getEnvInt("MIN_POOL_FOR_DRAFT", 8),
		TotalPicks:             getEnvInt("TOTAL_PICKS", 8),
		VoteQuorum:             getEnvInt("VOTE_QUORUM", 6),
		PointDelta:             getEnvInt("POINT_DELTA", 25),
		CaptainsCountInMinimum: os.Getenv("CAPTAINS_COUNT_IN_MINIMUM") == "true",
	}
}

// getEnvInt reads an optional integer env var, falling back to def.
func getEnvInt(key string, def int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("Error: Environment variable %s must be an integer, got %q.", key, value)
	}
	return n
}
