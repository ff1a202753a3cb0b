package structures

import "time"

type Server struct {
	Host      string `yaml:"host" validate:"required"`
	Port      int    `yaml:"port" validate:"required|uint|min:1"`
	PublicURL string `yaml:"publicUrl" validate:"required"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

// AnonymityConfig holds the server secret every anonymous identifier is
// keyed with and the minimum group sizes enforced before any aggregate
// leaves the process.
type AnonymityConfig struct {
	Secret            string `yaml:"secret" validate:"required|minLen:32"`
	MinGroupSize      int    `yaml:"minGroupSize" validate:"required|min:2"`
	Min360Raters      int    `yaml:"min360Raters" validate:"required|min:2"`
	AnonymousIDLength int    `yaml:"anonymousIdLength" validate:"min:16|max:64"`
}

type SessionConfig struct {
	Driver    string        `yaml:"driver" validate:"required|in:freecache,redis"`
	TTL       time.Duration `yaml:"ttl" validate:"required|min:1"`
	CacheSize int           `yaml:"cacheSize"`
	RedisURL  string        `yaml:"redisUrl"`
}

type StorageConfig struct {
	Driver           string        `yaml:"driver" validate:"required|in:memory,sqlite"`
	SQLitePath       string        `yaml:"sqlitePath"`
	SnapshotPath     string        `yaml:"snapshotPath"`
	SnapshotInterval time.Duration `yaml:"snapshotInterval"`
}

type ScoringConfig struct {
	GapMedium          float64 `yaml:"gapMedium" validate:"min:0"`
	GapHigh            float64 `yaml:"gapHigh" validate:"min:0"`
	BlindSpotThreshold float64 `yaml:"blindSpotThreshold" validate:"min:0"`
	RankingSize        int     `yaml:"rankingSize" validate:"min:1"`
}

type CampaignConfig struct {
	TokenTTL      time.Duration `yaml:"tokenTTL" validate:"required|min:1"`
	SweepInterval time.Duration `yaml:"sweepInterval"`
}

type DispatchConfig struct {
	Driver   string   `yaml:"driver" validate:"required|in:log,kafka,sqs"`
	Brokers  []string `yaml:"brokers"`
	Topic    string   `yaml:"topic"`
	QueueURL string   `yaml:"queueUrl"`
	Buffer   int      `yaml:"buffer" validate:"min:1"`
}

type ArchiveConfig struct {
	Enabled bool   `yaml:"enabled"`
	Bucket  string `yaml:"bucket"`
	Prefix  string `yaml:"prefix"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwtSecret" validate:"required|minLen:16"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	WebServer Server          `yaml:"webServer"`
	Logger    LoggerConfig    `yaml:"logger"`
	Anonymity AnonymityConfig `yaml:"anonymity"`
	Session   SessionConfig   `yaml:"session"`
	Storage   StorageConfig   `yaml:"storage"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Campaign  CampaignConfig  `yaml:"campaign"`
	Dispatch  DispatchConfig  `yaml:"dispatch"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Auth      AuthConfig      `yaml:"auth"`
	Cache     CacheConfig     `yaml:"cache"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}
