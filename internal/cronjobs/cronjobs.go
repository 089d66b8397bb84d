package cronjobs

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/anas-fareedi/disaster-management/internal/db"
	"github.com/anas-fareedi/disaster-management/internal/requests"
)

// Closed requests older than this are swept off the active views.
const retentionWindow = 30 * 24 * time.Hour

const sweepTimeout = 5 * time.Minute

// InitCronJobs schedules the background maintenance jobs and starts the
// scheduler. Returns nil when DISABLE_CRON is set, so worker-less deploys
// (and tests) can opt out. The caller owns Stop.
func InitCronJobs() *cron.Cron {
	if os.Getenv("DISABLE_CRON") != "" {
		log.Println("[cron] DISABLE_CRON set, background jobs are off")
		return nil
	}

	store := requests.NewStore(db.DB)
	c := cron.New()

	// Retention sweep: runs nightly in the quiet hours
	_, err := c.AddFunc("30 2 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		swept, err := store.SweepStale(ctx, retentionWindow)
		if err != nil {
			log.Printf("[cron] retention sweep failed: %v", err)
			return
		}
		log.Printf("[cron] retention sweep deactivated %d closed requests", swept)
	})
	if err != nil {
		log.Println("Error scheduling retention sweep", err)
	}

	// Hourly heartbeat with the pool totals
	_, err = c.AddFunc("0 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		stats, err := store.Statistics(ctx)
		if err != nil {
			log.Printf("[cron] statistics heartbeat failed: %v", err)
			return
		}
		log.Printf("[cron] active=%d pending=%d urgent=%d completion=%.1f%%",
			stats.TotalRequests, stats.PendingRequests, stats.UrgentRequests, stats.CompletionRate)
	})
	if err != nil {
		log.Println("Error scheduling statistics heartbeat", err)
	}

	c.Start()
	log.Println("[cron] background jobs scheduled")
	return c
}
