// Package storage is the durable ledger of campaigns, tokens, responses,
// answers and audit entries. Every status-changing write is conditional on
// the current status, so concurrent callers cannot move a record backwards.
package storage

import (
	"context"
	"errors"
	"fmt"
	"surveycore/internal/models"
	"surveycore/internal/providers"
	"surveycore/internal/structures"
	"time"
)

var (
	ErrNotFound       = errors.New("storage: not found")
	ErrTokenExhausted = errors.New("storage: token has no uses left")
)

type LedgerStoreInterface interface {
	PutCampaign(ctx context.Context, c *models.Campaign) error
	GetCampaign(ctx context.Context, id string) (*models.Campaign, error)
	ListDueCampaigns(ctx context.Context, now time.Time) ([]*models.Campaign, error)
	// TransitionCampaign moves a campaign from one status to another and
	// fails with models.ErrConflict-coded errors if it is not in from.
	TransitionCampaign(ctx context.Context, id string, from, to models.CampaignStatus, at time.Time) error

	PutTokens(ctx context.Context, tokens []*models.Token) error
	GetTokenByFingerprint(ctx context.Context, fingerprint string) (*models.Token, error)
	// StartResponse consumes one use of the token and inserts r as a single
	// unit: either both happen or neither does. When a response already
	// exists for the campaign and anonymous id it is returned and no use is
	// consumed. ErrTokenExhausted is returned when no uses remain.
	StartResponse(ctx context.Context, tokenID, ipHash string, r *models.Response) (*models.Response, bool, error)
	ListTokens(ctx context.Context, campaignID string) ([]*models.Token, error)

	// CreateResponse inserts r unless a response already exists for the same
	// campaign and anonymous id, in which case the existing one is returned.
	CreateResponse(ctx context.Context, r *models.Response) (*models.Response, bool, error)
	GetResponse(ctx context.Context, id string) (*models.Response, error)
	FindResponse(ctx context.Context, campaignID, anonymousID string) (*models.Response, error)
	SaveAnswers(ctx context.Context, responseID string, answers []models.Answer, savedAt time.Time) error
	CompleteResponse(ctx context.Context, responseID string, at time.Time) (*models.Response, error)
	SetDemographics(ctx context.Context, responseID string, d models.Demographics) error
	ExpireResponses(ctx context.Context, campaignID string) (int, error)
	CountResponses(ctx context.Context, campaignID string) (map[models.ResponseStatus]int, error)
	ListSubmissions(ctx context.Context, campaignID string) ([]models.Submission, error)

	AppendAudit(ctx context.Context, e models.AuditEntry) error
	ListAudit(ctx context.Context, campaignID string) ([]models.AuditEntry, error)

	Close() error
}

func NewLedgerStore(conf *structures.Config, logger providers.Logger) (LedgerStoreInterface, func(), error) {
	var (
		store LedgerStoreInterface
		err   error
	)
	switch conf.Storage.Driver {
	case "sqlite":
		store, err = NewSQLiteStore(conf.Storage.SQLitePath)
	case "memory", "":
		store = NewMemoryStore()
	default:
		err = fmt.Errorf("unknown storage driver %q", conf.Storage.Driver)
	}
	if err != nil {
		return nil, nil, err
	}

	logger.Infof(providers.TypeApp, "Ledger store initialized: driver=%s", conf.Storage.Driver)
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Errorf(providers.TypeApp, "Failed to close ledger store: %v", err)
		}
	}
	return store, cleanup, nil
}

func conflict(format string, args ...interface{}) error {
	return models.NewError(models.CodeConflict, format, args...)
}
