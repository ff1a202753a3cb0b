package providers

import (
	"surveycore/internal/structures"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *structures.Config {
	return &structures.Config{
		WebServer: structures.Server{
			Host:      "0.0.0.0",
			Port:      8080,
			PublicURL: "https://survey.example.org",
		},
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/tmp/logs",
		},
		Anonymity: structures.AnonymityConfig{
			Secret:            "0123456789abcdef0123456789abcdef",
			MinGroupSize:      5,
			Min360Raters:      3,
			AnonymousIDLength: 24,
		},
		Session: structures.SessionConfig{
			Driver:    "freecache",
			TTL:       time.Hour,
			CacheSize: 1,
		},
		Storage: structures.StorageConfig{
			Driver: "memory",
		},
		Scoring: structures.ScoringConfig{
			GapMedium:          5,
			GapHigh:            10,
			BlindSpotThreshold: 0.5,
			RankingSize:        5,
		},
		Campaign: structures.CampaignConfig{
			TokenTTL: 72 * time.Hour,
		},
		Dispatch: structures.DispatchConfig{
			Driver: "log",
			Buffer: 16,
		},
		Auth: structures.AuthConfig{
			JWTSecret: "test-jwt-secret-value",
		},
	}
}

func TestConfigValidator_ValidConfig(t *testing.T) {
	v := NewCnfValidator(validConfig())
	assert.NoError(t, v.Validate())
}

func TestConfigValidator_EmptyHost(t *testing.T) {
	c := validConfig()
	c.WebServer.Host = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_ZeroPort(t *testing.T) {
	c := validConfig()
	c.WebServer.Port = 0
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_InvalidLogLevel(t *testing.T) {
	c := validConfig()
	c.Logger.Level = "verbose"
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_ShortSecret(t *testing.T) {
	c := validConfig()
	c.Anonymity.Secret = "too-short"
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_UnknownSessionDriver(t *testing.T) {
	c := validConfig()
	c.Session.Driver = "memcached"
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_RedisNeedsURL(t *testing.T) {
	c := validConfig()
	c.Session.Driver = "redis"
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())

	c.Session.RedisURL = "redis://localhost:6379/0"
	assert.NoError(t, v.Validate())
}

func TestConfigValidator_GapThresholdOrder(t *testing.T) {
	c := validConfig()
	c.Scoring.GapHigh = 3
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_KafkaNeedsBrokers(t *testing.T) {
	c := validConfig()
	c.Dispatch.Driver = "kafka"
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())

	c.Dispatch.Brokers = []string{"localhost:9092"}
	c.Dispatch.Topic = "survey-intents"
	assert.NoError(t, v.Validate())
}
