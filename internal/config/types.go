package config

// Config holds all configuration for the application.
type Config struct {
	Port          string `validate:"required"`
	DBName        string `validate:"required"`
	MigrationsDir string `validate:"required"`
	Turso         TursoConfig
	TTBL          TTBLConfig
	WTT           WTTConfig
	Stats         StatsConfig
	Export        ExportConfig
	Slack         SlackConfig
	ProjectID     string `validate:"required"`
	PubSub        PubSubConfig
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

// TTBLConfig covers the Bundesliga schedule and match endpoints.
type TTBLConfig struct {
	BaseURL  string `validate:"required,url"`
	Season   string `validate:"required"`
	Gamedays int    `validate:"min=1"`
	DelayMS  int    `validate:"min=0"`
}

// WTTConfig covers the ITTF fabrik results list and the rankings check.
type WTTConfig struct {
	BaseURL     string `validate:"required,url"`
	ListID      string `validate:"required"`
	Year        int    `validate:"min=1"`
	PageLimit   int    `validate:"min=1"`
	DelayMS     int    `validate:"min=0"`
	RankingsURL string `validate:"required,url"`
}

// StatsConfig carries the leaderboard thresholds. They are caller
// configuration, not core constants.
type StatsConfig struct {
	MinGames int `validate:"min=0"`
	TopN     int `validate:"min=1"`
}

// ExportConfig controls the JSON snapshot writer.
type ExportConfig struct {
	Dir  string `validate:"required"`
	Keep int    `validate:"min=1"`
}

type SlackConfig struct {
	Token         string `validate:"required"`
	ChannelID     string `validate:"required"`
	SigningSecret string `validate:"required"`
}

type PubSubConfig struct {
	TopicID string `validate:"required"`
}
