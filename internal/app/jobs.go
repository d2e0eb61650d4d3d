package app

import (
	"context"
	"fmt"

	"github.com/neontemple/temple-site/internal/config"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Jobs refreshes the featured banner and the video list on cron schedules.
type Jobs struct {
	cron *cron.Cron
	deps *Dependencies
}

func NewJobs(deps *Dependencies, cfg config.Application) (*Jobs, error) {
	logger := cron.PrintfLogger(log.StandardLogger())
	c := cron.New(
		cron.WithLocation(deps.Location),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	jobs := &Jobs{cron: c, deps: deps}

	if _, err := c.AddFunc(cfg.Banner.Refresh, func() { jobs.RefreshBanner(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid banner refresh schedule %q: %w", cfg.Banner.Refresh, err)
	}
	if _, err := c.AddFunc(cfg.Video.Refresh, func() { jobs.RefreshVideos(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid video refresh schedule %q: %w", cfg.Video.Refresh, err)
	}
	return jobs, nil
}

// RefreshBanner reloads the featured list. A failed fetch keeps the old one.
func (j *Jobs) RefreshBanner(ctx context.Context) {
	if err := j.deps.BannerController.Refresh(ctx, j.deps.CoterieClient); err != nil {
		log.Warnf("banner refresh: %v", err)
	}
}

func (j *Jobs) RefreshVideos(ctx context.Context) {
	j.deps.VideoService.Refresh(ctx)
}

// Start runs both refreshes once in the background and starts the schedule.
func (j *Jobs) Start(ctx context.Context) {
	go j.RefreshBanner(ctx)
	go j.RefreshVideos(ctx)
	j.cron.Start()
}

// Stop halts the schedule and returns a context that is done once running
// jobs have finished.
func (j *Jobs) Stop() context.Context {
	return j.cron.Stop()
}
