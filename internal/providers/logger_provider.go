package providers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"surveycore/internal/structures"
	"time"

	"github.com/rs/zerolog"
)

type TypeEnum int

const (
	TypeApp TypeEnum = iota
	TypeGet
	TypePost
)

var logFileNames = map[TypeEnum]string{
	TypeApp:  "app.log",
	TypeGet:  "get.log",
	TypePost: "post.log",
}

type Logger interface {
	Errorf(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Debugf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Fatalf(t TypeEnum, format string, args ...interface{})
	Close()
}

type LogProvider struct {
	loggers map[TypeEnum]zerolog.Logger
	files   []*os.File
}

func GetLogTypeByRequestType(method string) TypeEnum {
	if method == http.MethodPost {
		return TypePost
	}
	return TypeGet
}

func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", conf.Logger.Level, err)
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano

	p := &LogProvider{loggers: make(map[TypeEnum]zerolog.Logger, len(logFileNames))}
	for t, name := range logFileNames {
		path := filepath.Join(conf.Logger.Dir, name)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, os.FileMode(conf.Logger.Mode))
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("open log file %s: %w", path, err)
		}
		p.files = append(p.files, f)

		var w io.Writer = f
		if conf.Debug {
			w = zerolog.MultiLevelWriter(f, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
		}
		p.loggers[t] = zerolog.New(w).Level(level).With().Timestamp().Str("app", conf.AppName).Logger()
	}
	return p, nil
}

func (p *LogProvider) logger(t TypeEnum) *zerolog.Logger {
	l, ok := p.loggers[t]
	if !ok {
		l = p.loggers[TypeApp]
	}
	return &l
}

func (p *LogProvider) Errorf(t TypeEnum, format string, args ...interface{}) {
	p.logger(t).Error().Msgf(format, args...)
}

func (p *LogProvider) Warnf(t TypeEnum, format string, args ...interface{}) {
	p.logger(t).Warn().Msgf(format, args...)
}

func (p *LogProvider) Debugf(t TypeEnum, format string, args ...interface{}) {
	p.logger(t).Debug().Msgf(format, args...)
}

func (p *LogProvider) Infof(t TypeEnum, format string, args ...interface{}) {
	p.logger(t).Info().Msgf(format, args...)
}

func (p *LogProvider) Fatalf(t TypeEnum, format string, args ...interface{}) {
	p.logger(t).Fatal().Msgf(format, args...)
}

func (p *LogProvider) Close() {
	for _, f := range p.files {
		_ = f.Sync()
		_ = f.Close()
	}
	p.files = nil
}
