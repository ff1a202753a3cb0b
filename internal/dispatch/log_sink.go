package dispatch

import (
	"context"
	"surveycore/internal/providers"
)

// LogSink only records that an intent happened. Data is not logged since
// invitation links carry token secrets.
type LogSink struct {
	logger providers.Logger
}

func NewLogSink(logger providers.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Send(_ context.Context, intent Intent) error {
	s.logger.Infof(providers.TypeApp, "Intent %s campaign=%s template=%s", intent.Kind, intent.CampaignID, intent.Template)
	return nil
}

func (s *LogSink) Close() error {
	return nil
}
