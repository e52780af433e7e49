package projectors

import (
	"log/slog"

	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/metrics"
	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/models"
	"github.com/alitto/pond/v2"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Reconciler periodically recomputes every profile's follower/following
// counts from the relationship table. Projection already recomputes on each
// follow/unfollow; the sweep heals profiles whose events were lost before
// this indexer started, or applied against a then-missing profile.
type Reconciler struct {
	db   *gorm.DB
	cron *cron.Cron
	pool pond.Pool
	spec string
}

func NewReconciler(db *gorm.DB, spec string, workers int) *Reconciler {
	return &Reconciler{
		db:   db,
		cron: cron.New(),
		pool: pond.NewPool(workers),
		spec: spec,
	}
}

func (r *Reconciler) Start() error {
	if _, err := r.cron.AddFunc(r.spec, r.Sweep); err != nil {
		return err
	}
	r.cron.Start()
	slog.Info("counter reconciler scheduled", "spec", r.spec)
	return nil
}

func (r *Reconciler) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.pool.StopAndWait()
}

// Sweep recomputes counts for all profiles. Profiles are disjoint, so the
// per-profile tasks can run concurrently without ordering concerns.
func (r *Reconciler) Sweep() {
	var profileIDs []string
	if err := r.db.Model(&models.Profile{}).Pluck("profile_id", &profileIDs).Error; err != nil {
		slog.Error("reconcile sweep failed to list profiles", "error", err)
		return
	}

	group := r.pool.NewGroup()
	for _, id := range profileIDs {
		profileID := id
		group.Submit(func() {
			if err := recomputeCounts(r.db, profileID); err != nil {
				slog.Error("count reconcile failed", "profile_id", profileID, "error", err)
			}
		})
	}
	if err := group.Wait(); err != nil {
		slog.Error("reconcile sweep finished with errors", "error", err)
		return
	}

	metrics.ReconcileRuns.Inc()
	slog.Info("counter reconcile sweep completed", "profiles", len(profileIDs))
}
