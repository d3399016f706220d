package vehiclepose

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	cleanhttp "github.com/hashicorp/go-cleanhttp"

	"github.com/autocore-ai/RSU/internal/abi"
	"github.com/autocore-ai/RSU/internal/logger"
)

// Run is the vehicle-pose plugin's ABI entry point. It keeps the shape of
// a forwarder loop: collect whatever poses arrived since the last tick,
// PUT them to the collector, sleep until the next interval. The
// subscribe-side decode and transport are external collaborators this
// package does not implement, so the collected batch is always empty.
func Run(configPath string, running, errorFlag *abi.Flag) int32 {
	log := logger.VehiclePose()

	cfg, err := LoadConfig(configPath)
	if err != nil {
		log.Error().Err(err).Msg("failed to load vehicle pose config")
		return -1
	}

	client := cleanhttp.DefaultClient()
	interval := time.Duration(cfg.IntervalMillis) * time.Millisecond

	for running.Get() {
		start := time.Now()

		if err := send(client, cfg.CenterDBURL); err != nil {
			log.Error().Err(err).Str("url", cfg.CenterDBURL).Msg("failed to send vehicle pose batch to center db")
		}

		if d := interval - time.Since(start); d > 0 {
			time.Sleep(d)
		}
	}

	return abi.ExitClean
}

// send PUTs the current pose batch to the collector. The batch is always
// empty until a subscriber for VehicleStatusZenohPath is wired in.
func send(client *http.Client, url string) error {
	body, err := json.Marshal([]struct{}{})
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("center db %s responded with status %d", url, resp.StatusCode)
	}
	return nil
}
