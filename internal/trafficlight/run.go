package trafficlight

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/autocore-ai/RSU/internal/abi"
	"github.com/autocore-ai/RSU/internal/logger"
)

// tickPeriod is the engine's fixed 1 Hz cadence.
const tickPeriod = time.Second

// Run is the traffic-light plugin's ABI entry point: it reads its own
// config, initialises the engine, starts the /rule_change HTTP surface,
// and runs the 1 Hz tick loop until running is flipped to false.
//
// The tick loop computes its next wake deadline at the start of each
// iteration (next-wake = iteration-start + tickPeriod) rather than
// sleeping a flat duration after each tick, so that cadence does not drift
// with the cost of publishing and reporting.
func Run(configPath string, running, errorFlag *abi.Flag) int32 {
	log := logger.TrafficLight()

	cfg, err := LoadConfig(configPath)
	if err != nil {
		log.Error().Err(err).Msg("failed to load traffic light config")
		return -1
	}

	engine := NewEngine(cfg)

	pub, err := NewNATSPublisher("")
	if err != nil {
		log.Warn().Err(err).Msg("pub/sub transport unavailable, light detail will not be published")
		pub = nil
	} else {
		defer pub.Close()
	}

	httpSrv := &http.Server{Addr: ":" + cfg.Port, Handler: Router(engine)}
	serveErr := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	reportC := newReportClient()

	for running.Get() {
		start := time.Now()

		select {
		case err := <-serveErr:
			log.Error().Err(err).Msg("rule_change HTTP surface failed, marking plugin errored")
			errorFlag.Set(true)
		default:
		}

		flat, detail := engine.Tick()

		if pub != nil {
			if data, err := json.Marshal(detail); err != nil {
				log.Error().Err(err).Msg("failed to encode light detail document")
			} else if err := pub.Publish(DetailSubject(engine.RoadID()), data); err != nil {
				log.Error().Err(err).Str("road_id", engine.RoadID()).Msg("failed to publish light detail")
			}
		}

		if err := reportC.send(engine.CenterDBURL(), engine.RoadID(), flat); err != nil {
			log.Error().Err(err).Msg("failed to send traffic light status to center db")
		}

		if d := tickPeriod - time.Since(start); d > 0 {
			time.Sleep(d)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)

	return abi.ExitClean
}
