package config

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	MigrationsDir string
	Port          string
	Slack         SlackConfig
	Turso         TursoConfig
	Inngest       InngestConfig
	ProjectID     string
	League        LeagueConfig
}

type SlackConfig struct {
	Token         string
	ChannelID     string
	SigningSecret string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

type InngestConfig struct {
	AppID      string
	SigningKey string
	EventKey   string
}

// LeagueConfig carries the tunables of the match lifecycle. The core never
// reads the environment directly; these are injected at wiring time.
type LeagueConfig struct {
	// StartPoolSize is the pool size that triggers auto-balancing for a
	// pickup ("start") match.
	StartPoolSize int
	// MinPoolForDraft is the number of signed players required before the
	// first pick of a challenge draft.
	MinPoolForDraft int
	// TotalPicks is the number of drafted players that completes a
	// challenge draft (captains excluded).
	TotalPicks int
	// VoteQuorum is the vote count that finalizes a pickup result.
	VoteQuorum int
	// PointDelta is the ladder adjustment applied per player on a result.
	PointDelta int
	// CaptainsCountInMinimum counts the two captains toward
	// MinPoolForDraft when true.
	CaptainsCountInMinimum bool
}
