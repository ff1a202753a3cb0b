package providers

import (
	"fmt"
	"path/filepath"
	"strings"
	"surveycore/internal/structures"
	"time"

	"github.com/spf13/viper"
)

var envBindings = map[string]string{
	"logger.level":           "SURVEY_LOG_LEVEL",
	"anonymity.secret":       "SURVEY_ANONYMITY_SECRET",
	"anonymity.minGroupSize": "SURVEY_MIN_GROUP_SIZE",
	"auth.jwtSecret":         "SURVEY_JWT_SECRET",
	"session.driver":         "SURVEY_SESSION_DRIVER",
	"session.redisUrl":       "SURVEY_REDIS_URL",
	"storage.driver":         "SURVEY_STORAGE_DRIVER",
	"storage.sqlitePath":     "SURVEY_SQLITE_PATH",
	"dispatch.driver":        "SURVEY_DISPATCH_DRIVER",
	"dispatch.queueUrl":      "SURVEY_SQS_QUEUE_URL",
	"archive.bucket":         "SURVEY_ARCHIVE_BUCKET",
	"cache.enabled":          "SURVEY_CACHE_ENABLED",
	"cache.size":             "SURVEY_CACHE_SIZE",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("anonymity.minGroupSize", 5)
	v.SetDefault("anonymity.min360Raters", 3)
	v.SetDefault("anonymity.anonymousIdLength", 24)
	v.SetDefault("session.driver", "freecache")
	v.SetDefault("session.ttl", 60*time.Minute)
	v.SetDefault("session.cacheSize", 16)
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.snapshotInterval", 30*time.Second)
	v.SetDefault("scoring.gapMedium", 5.0)
	v.SetDefault("scoring.gapHigh", 10.0)
	v.SetDefault("scoring.blindSpotThreshold", 0.5)
	v.SetDefault("scoring.rankingSize", 5)
	v.SetDefault("campaign.tokenTTL", 72*time.Hour)
	v.SetDefault("campaign.sweepInterval", time.Minute)
	v.SetDefault("dispatch.driver", "log")
	v.SetDefault("dispatch.buffer", 1024)
	v.SetDefault("cache.ttl", 10*time.Second)
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "SurveyCore"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
