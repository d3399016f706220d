// Package reporter implements the RSU's periodic status reporter: once
// per configured interval it invokes the Plugin Manager's
// health check and uploads the current plugin roster to the remote
// collector.
package reporter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	cleanhttp "github.com/hashicorp/go-cleanhttp"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/autocore-ai/RSU/internal/logger"
	"github.com/autocore-ai/RSU/internal/pluginmgr"
)

// Reporter drives the health-check + roster-upload loop.
type Reporter struct {
	pm       *pluginmgr.Manager
	url      string
	interval time.Duration
	client   *http.Client
	log      *zerolog.Logger
}

// New builds a Reporter. intervalSeconds is the report_duration from the
// top-level RSU config.
func New(pm *pluginmgr.Manager, centerDBURL string, intervalSeconds int64) *Reporter {
	return &Reporter{
		pm:       pm,
		url:      centerDBURL,
		interval: time.Duration(intervalSeconds) * time.Second,
		client:   cleanhttp.DefaultClient(),
		log:      logger.Reporter(),
	}
}

// Run blocks, ticking once per r.interval until ctx is canceled. It uses a
// dedicated cron instance with a constant-delay schedule rather than a
// bare time.Ticker so that a slow tick (a blocked HTTP PUT) cannot pile up
// catch-up ticks once it returns. robfig/cron skips missed firings the
// same way a deadline-recomputed sleep would.
func (r *Reporter) Run(ctx context.Context) {
	c := cron.New()
	c.Schedule(cron.ConstantDelaySchedule{Delay: r.interval}, cron.FuncJob(r.tick))
	c.Start()

	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
}

func (r *Reporter) tick() {
	r.pm.CheckPlugins()

	snapshot := r.pm.Snapshot()
	if err := r.send(snapshot); err != nil {
		r.log.Error().Err(err).Str("url", r.url).Msg("failed to send plugin roster to center db")
	} else {
		r.log.Debug().Msg("plugin roster reported successfully")
	}
}

// send PUTs the roster snapshot as-is. Transport errors are returned to the
// caller, which logs and swallows them; the next tick tries again.
func (r *Reporter) send(snapshot map[string]pluginmgr.Descriptor) error {
	if r.url == "" {
		return fmt.Errorf("center_db_url is empty")
	}

	body, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal roster report: %w", err)
	}

	req, err := http.NewRequest(http.MethodPut, r.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build roster report request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("send roster report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("center db responded with status %d", resp.StatusCode)
	}
	return nil
}
