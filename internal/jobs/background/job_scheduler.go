package background

import (
	"context"
	"sync"
	"time"

	"dataclinica/internal/jobs"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

// JobScheduler owns the recurring background jobs: the alert monitor sweep
// and the stats cache refresh.
type JobScheduler struct {
	scheduler      gocron.Scheduler
	alertMonitor   *jobs.AlertMonitor
	statsRefresher *jobs.StatsRefresher

	alertInterval time.Duration
	statsInterval time.Duration

	registered map[string]gocron.Job
	mu         sync.RWMutex
}

func NewJobScheduler(alertMonitor *jobs.AlertMonitor, statsRefresher *jobs.StatsRefresher, alertInterval, statsInterval time.Duration) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:      scheduler,
		alertMonitor:   alertMonitor,
		statsRefresher: statsRefresher,
		alertInterval:  alertInterval,
		statsInterval:  statsInterval,
		registered:     make(map[string]gocron.Job),
	}
	js.registerJobs()
	return js, nil
}

func (js *JobScheduler) registerJobs() {
	alertJob, err := js.scheduler.NewJob(
		gocron.DurationJob(js.alertInterval),
		gocron.NewTask(func() {
			if err := js.alertMonitor.Run(context.Background()); err != nil {
				log.Error().Err(err).Msg("alert monitor run failed")
			}
		}),
		gocron.WithName("supply-alert-monitor"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to register alert monitor job")
	} else {
		js.track("alert-monitor", alertJob)
	}

	statsJob, err := js.scheduler.NewJob(
		gocron.DurationJob(js.statsInterval),
		gocron.NewTask(func() {
			if err := js.statsRefresher.Run(context.Background()); err != nil {
				log.Error().Err(err).Msg("stats refresh run failed")
			}
		}),
		gocron.WithName("inventory-stats-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to register stats refresh job")
	} else {
		js.track("stats-refresh", statsJob)
	}

	log.Info().Int("jobs", len(js.registered)).Msg("registered background jobs")
}

func (js *JobScheduler) track(name string, job gocron.Job) {
	js.mu.Lock()
	defer js.mu.Unlock()
	js.registered[name] = job
}

func (js *JobScheduler) Start() {
	log.Info().Msg("starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	log.Info().Msg("stopping background job scheduler")
	return js.scheduler.Shutdown()
}
