package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/internal/repository"
	"github.com/noah-isme/academic-records-api/pkg/config"
)

// View kinds, also used as metric labels.
const (
	ViewKindResults  = "results"
	ViewKindSections = "sections"
	ViewKindStudents = "students"
)

// Views groups the per-entity view registries.
type Views struct {
	Results  *ViewRegistry[*ResultManager]
	Sections *ViewRegistry[*SectionManager]
	Students *ViewRegistry[*StudentManager]
}

// NewViews wires one registry per entity over the shared manager dependencies.
func NewViews(deps ManagerDeps, idleTTL time.Duration, observer ViewObserver, logger *zap.Logger) *Views {
	deps = deps.withDefaults()
	return &Views{
		Results: NewViewRegistry(ViewKindResults, func() *ResultManager {
			return NewResultManager(deps)
		}, idleTTL, observer, logger),
		Sections: NewViewRegistry(ViewKindSections, func() *SectionManager {
			return NewSectionManager(deps)
		}, idleTTL, observer, logger),
		Students: NewViewRegistry(ViewKindStudents, func() *StudentManager {
			return NewStudentManager(deps)
		}, idleTTL, observer, logger),
	}
}

// Sweep discards idle views of every kind.
func (v *Views) Sweep() int {
	return v.Results.Sweep() + v.Sections.Sweep() + v.Students.Sweep()
}

// Run sweeps idle views every interval until ctx is done.
func (v *Views) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc("@every "+interval.String(), func() { v.Sweep() }); err != nil {
		return err
	}
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// CloseAll discards every open view.
func (v *Views) CloseAll() {
	v.Results.CloseAll()
	v.Sections.CloseAll()
	v.Students.CloseAll()
}

// DepsFromConfig maps configuration onto the manager dependencies.
func DepsFromConfig(cfg *config.Config, store repository.CollectionStore, metrics *MetricsService, logger *zap.Logger) ManagerDeps {
	if logger == nil {
		logger = zap.NewNop()
	}
	ids := NewIDGenerator(nil)
	return ManagerDeps{
		Store:           store,
		IDs:             ids,
		References:      NewReferenceResolver(store, ids, cfg.Records.RosterPolicy, logger),
		Validator:       NewValidator(),
		Logger:          logger,
		Observer:        metrics,
		NotificationTTL: cfg.Notification.TTL,
		SeedSampleData:  cfg.Records.SeedSampleData,
	}
}
