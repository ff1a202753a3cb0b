package providers

import (
	"fmt"
	"surveycore/internal/structures"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

// Validate checks struct tags first, then the cross-field rules tags cannot express.
func (c *CnfValidator) Validate() error {
	v := validate.Struct(c.conf)
	if !v.Validate() {
		return v.Errors
	}

	if c.conf.Scoring.GapHigh < c.conf.Scoring.GapMedium {
		return fmt.Errorf("scoring.gapHigh (%v) must not be below scoring.gapMedium (%v)",
			c.conf.Scoring.GapHigh, c.conf.Scoring.GapMedium)
	}
	if c.conf.Session.Driver == "redis" && c.conf.Session.RedisURL == "" {
		return fmt.Errorf("session.redisUrl is required for the redis session driver")
	}
	if c.conf.Storage.Driver == "sqlite" && c.conf.Storage.SQLitePath == "" {
		return fmt.Errorf("storage.sqlitePath is required for the sqlite storage driver")
	}
	switch c.conf.Dispatch.Driver {
	case "kafka":
		if len(c.conf.Dispatch.Brokers) == 0 || c.conf.Dispatch.Topic == "" {
			return fmt.Errorf("dispatch.brokers and dispatch.topic are required for the kafka driver")
		}
	case "sqs":
		if c.conf.Dispatch.QueueURL == "" {
			return fmt.Errorf("dispatch.queueUrl is required for the sqs driver")
		}
	}
	if c.conf.Archive.Enabled && c.conf.Archive.Bucket == "" {
		return fmt.Errorf("archive.bucket is required when archiving is enabled")
	}
	return nil
}
