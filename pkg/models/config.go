package models

// JournalingConfig holds the journaling and summarization policy settings
// read from .lunaconfig via Viper.
type JournalingConfig struct {
	// WordCountThreshold is the entry length above which a summary is
	// generated. Valid range 10-1000.
	WordCountThreshold int `yaml:"word_count_threshold" mapstructure:"word_count_threshold"`
	// SummaryRatio is the maximum allowed summary/entry word-count ratio.
	// Valid range (0, 1.0].
	SummaryRatio float64 `yaml:"summary_ratio" mapstructure:"summary_ratio"`
	// SummarizationEnabled is the master switch for automatic summaries.
	SummarizationEnabled bool `yaml:"summarization_enabled" mapstructure:"summarization_enabled"`
	// SummaryMinWords is the floor below which summarization is skipped even
	// when the entry exceeds the threshold. Valid range 5-100.
	SummaryMinWords int `yaml:"summary_min_words" mapstructure:"summary_min_words"`
	// MaxSummaryAttempts is the total retry budget for ratio or availability
	// failures, including the first attempt. Valid range 1-10.
	MaxSummaryAttempts int `yaml:"max_summary_attempts" mapstructure:"max_summary_attempts"`
}

// ModelConfig holds the completion model settings.
type ModelConfig struct {
	Name           string `yaml:"name" mapstructure:"name"`
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// OAuthProviderConfig holds the OAuth2 client settings for one provider.
type OAuthProviderConfig struct {
	ClientID     string   `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string   `yaml:"client_secret,omitempty" mapstructure:"client_secret"`
	RedirectURL  string   `yaml:"redirect_url,omitempty" mapstructure:"redirect_url"`
	Scopes       []string `yaml:"scopes,omitempty" mapstructure:"scopes"`
}

// IntegrationsConfig groups the third-party task and calendar providers.
type IntegrationsConfig struct {
	Todoist OAuthProviderConfig `yaml:"todoist,omitempty" mapstructure:"todoist"`
	Google  OAuthProviderConfig `yaml:"google,omitempty" mapstructure:"google"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr" mapstructure:"listen_addr"`
}

// Config is the process-wide configuration, loaded once at startup and
// passed explicitly into each component that needs it.
type Config struct {
	JournalDir   string             `yaml:"journal_dir" mapstructure:"journal_dir"`
	DatabasePath string             `yaml:"database_path" mapstructure:"database_path"`
	EventLogPath string             `yaml:"event_log_path" mapstructure:"event_log_path"`
	Journaling   JournalingConfig   `yaml:"journaling" mapstructure:"journaling"`
	Model        ModelConfig        `yaml:"model" mapstructure:"model"`
	Integrations IntegrationsConfig `yaml:"integrations,omitempty" mapstructure:"integrations"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
}
