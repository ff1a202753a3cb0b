package jobs

import (
	"context"
	"surveycore/internal/jobs/interfaces"
	"surveycore/internal/providers"
	"surveycore/internal/services"
	"surveycore/internal/structures"
	"sync"
	"time"

	"github.com/roylee0704/gron"
)

const (
	defaultSnapshotInterval = 30 * time.Second
	defaultSweepInterval    = time.Minute
	archiveTimeout          = 30 * time.Second
)

// Scheduler runs the periodic jobs: persisting the in-memory ledger and
// closing campaigns whose closing time has passed.
type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	campaigns   services.CampaignServiceInterface
	fileManager *FileManager
	archiver    interfaces.ArchiverInterface
	metrics     providers.MetricsProviderInterface
	cron        *gron.Cron
	opsMu       sync.Mutex
	now         func() time.Time
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	if s.fileManager.Enabled() && s.config.Storage.SnapshotPath != "" {
		s.cron.AddFunc(gron.Every(interval(s.config.Storage.SnapshotInterval, defaultSnapshotInterval)), func() {
			s.opsMu.Lock()
			defer s.opsMu.Unlock()

			if err := s.persist(false); err != nil {
				s.logger.Errorf(providers.TypeApp, "Error while persisting ledger: %s", err)
			}
		})
	}

	s.cron.AddFunc(gron.Every(interval(s.config.Campaign.SweepInterval, defaultSweepInterval)), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		s.sweep()
	})

	s.cron.Start()
}

func interval(configured, fallback time.Duration) time.Duration {
	if configured <= 0 {
		return fallback
	}
	return configured
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) Restore() error {
	if s.config.Storage.SnapshotPath == "" {
		return nil
	}
	return s.fileManager.LoadFromFile(s.config.Storage.SnapshotPath)
}

// Persist writes a final snapshot and archives it.
func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	if !s.fileManager.Enabled() || s.config.Storage.SnapshotPath == "" {
		return nil
	}
	s.logger.Infof(providers.TypeApp, "Persisting ledger to file...")
	if err := s.persist(true); err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting ledger: %s", err)
		return err
	}
	return nil
}

// persist must be called with opsMu held.
func (s *Scheduler) persist(archive bool) error {
	start := time.Now()
	data, err := s.fileManager.SaveToFile(s.config.Storage.SnapshotPath)
	if err != nil {
		return err
	}
	s.metrics.ObservePersistenceDuration(time.Since(start))
	s.logger.Debugf(providers.TypeApp, "Persisted ledger to file %s", s.config.Storage.SnapshotPath)

	if !archive {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()
	name := "ledger-" + s.now().UTC().Format("20060102T150405Z") + ".json.zst"
	if err := s.archiver.Archive(ctx, name, data); err != nil {
		// The local snapshot is already safe; only the copy failed.
		s.logger.Errorf(providers.TypeApp, "Error while archiving ledger snapshot: %s", err)
	}
	return nil
}

func (s *Scheduler) sweep() {
	closed, err := s.campaigns.SweepDue(context.Background())
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while closing due campaigns: %s", err)
	}
	if closed > 0 {
		s.logger.Infof(providers.TypeApp, "Closed %d due campaigns", closed)
	}
}

func NewScheduler(config *structures.Config, logger providers.Logger, campaigns services.CampaignServiceInterface, fileManager *FileManager, archiver interfaces.ArchiverInterface, metrics providers.MetricsProviderInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:      config,
		logger:      logger,
		campaigns:   campaigns,
		fileManager: fileManager,
		archiver:    archiver,
		metrics:     metrics,
		now:         time.Now,
	}
}
