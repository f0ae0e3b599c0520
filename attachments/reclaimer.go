package attachments

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"hoaxify/config"
	"hoaxify/models"
	"hoaxify/storage"
	"hoaxify/store"
)

type ReclaimResult struct {
	Scanned int
	Deleted int
	Skipped int // bound to a post after the scan
	Failed  int
}

// Reclaimer periodically removes attachments that were uploaded but never
// bound to a post within the retention window, together with their blobs.
type Reclaimer struct {
	stores *store.Stores
	blobs  storage.BlobStorage
	cfg    config.Reclaim
	log    zerolog.Logger
	now    func() time.Time

	mutex sync.Mutex
	stop  chan struct{}
	done  chan struct{}
}

func NewReclaimer(stores *store.Stores, blobs storage.BlobStorage, cfg config.Reclaim, log zerolog.Logger) *Reclaimer {
	return &Reclaimer{
		stores: stores,
		blobs:  blobs,
		cfg:    cfg,
		log:    log.With().Str("component", "reclaimer").Logger(),
		now:    time.Now,
	}
}

func (r *Reclaimer) ReclaimOrphans(ctx context.Context) (result ReclaimResult, err error) {
	cutoff := r.now().Add(-r.cfg.Retention).UnixMilli()
	orphans, err := r.stores.Attachments.FindUnboundBefore(ctx, cutoff)
	if err != nil {
		return result, err
	}
	result.Scanned = len(orphans)
	for i := range orphans {
		deleted, err := r.reclaimOne(ctx, &orphans[i])
		switch {
		case err != nil:
			result.Failed++
			r.log.Error().Err(err).Uint64("attachment", orphans[i].ID).Msg("reclaim attachment")
		case deleted:
			result.Deleted++
		default:
			result.Skipped++
		}
	}
	r.log.Info().
		Int("scanned", result.Scanned).
		Int("deleted", result.Deleted).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("reclaim run finished")
	return result, nil
}

// reclaimOne deletes the row and then its blobs in one transaction, so a blob
// failure puts the row back for the next run
func (r *Reclaimer) reclaimOne(ctx context.Context, attachment *models.Attachment) (deleted bool, err error) {
	err = r.stores.Transaction(ctx, func(tx *store.Stores) error {
		deleted, err = tx.Attachments.DeleteIfUnbound(ctx, attachment.ID)
		if err != nil || !deleted {
			return err
		}
		for _, name := range attachment.BlobNames() {
			if err := r.blobs.Delete(ctx, name); err != nil {
				return fmt.Errorf("delete blob %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// Start runs ReclaimOrphans every configured interval until Stop is called
func (r *Reclaimer) Start() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.stop != nil {
		return
	}
	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	go r.loop(r.stop, r.done)
	r.log.Info().Dur("interval", r.cfg.Interval).Dur("retention", r.cfg.Retention).Msg("reclaimer started")
}

func (r *Reclaimer) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if _, err := r.ReclaimOrphans(context.Background()); err != nil {
				r.log.Error().Err(err).Msg("reclaim run aborted")
			}
		}
	}
}

// Stop ends the loop and waits for a run in progress to finish
func (r *Reclaimer) Stop() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.stop == nil {
		return
	}
	close(r.stop)
	<-r.done
	r.stop, r.done = nil, nil
	r.log.Info().Msg("reclaimer stopped")
}
