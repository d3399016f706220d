package trafficlight

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/autocore-ai/RSU/internal/logger"
)

// Engine owns three independently-locked tables:
// durations, groups, and statuses. Whenever more than one is held at once,
// acquisition order is statuses -> groups -> durations; no other nesting
// is permitted.
type Engine struct {
	durationsMu sync.Mutex
	durations   Durations

	groupsMu sync.Mutex
	groups   map[string][]string

	statusesMu sync.Mutex
	statuses   map[string]*LightStatus

	masterGroup string
	roadID      string
	centerDBURL string

	log *zerolog.Logger
}

// NewEngine builds an Engine from cfg and performs inverse-phase
// initialisation of every non-master group.
func NewEngine(cfg *Config) *Engine {
	e := &Engine{
		groups:      make(map[string][]string, len(cfg.LightIDGroup)),
		statuses:    make(map[string]*LightStatus, len(cfg.LightIDGroup)),
		masterGroup: cfg.Master,
		roadID:      cfg.RoadID,
		centerDBURL: cfg.CenterDBURL,
		log:         logger.TrafficLight(),
	}

	e.durations = Durations{
		Green:   cfg.Duration.Green,
		Red:     cfg.Duration.Red,
		Yellow:  cfg.Duration.Yellow,
		Unknown: cfg.Duration.Unknown,
	}

	initColor := Color(cfg.Color)
	initDuration := e.durations.forColor(initColor)

	for name, ids := range cfg.LightIDGroup {
		idsCopy := append([]string(nil), ids...)
		e.groups[name] = idsCopy

		if name == cfg.Master {
			e.statuses[name] = &LightStatus{Color: initColor, Counter: initDuration}
			continue
		}
		inv := e.inverseColorLocked(initColor, initDuration)
		e.statuses[name] = &LightStatus{Color: inv, Counter: e.durations.forColor(inv)}
	}

	return e
}

// inverseColorLocked computes the complementary colour for a non-master
// group given the master's colour and remaining counter.
// Caller must not hold durationsMu: this helper locks it itself, only for
// its own read.
func (e *Engine) inverseColorLocked(color Color, counter int64) Color {
	e.durationsMu.Lock()
	defer e.durationsMu.Unlock()
	switch color {
	case Red:
		if counter > e.durations.Yellow {
			return Green
		}
		return Yellow
	case Green, Yellow:
		return Red
	default:
		return Unknown
	}
}

// Tick advances every group's status by one second, transitioning where
// due, and returns the flattened set of light readings plus the combined
// per-group detail document for publication.
func (e *Engine) Tick() (flat []Light, detail map[string][]Light) {
	e.statusesMu.Lock()
	defer e.statusesMu.Unlock()
	e.groupsMu.Lock()
	defer e.groupsMu.Unlock()
	e.durationsMu.Lock()
	defer e.durationsMu.Unlock()

	detail = make(map[string][]Light, len(e.groups))
	flat = make([]Light, 0)

	// Deterministic order only matters for test reproducibility; map
	// iteration order is otherwise irrelevant to correctness.
	names := make([]string, 0, len(e.groups))
	for name := range e.groups {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ids := e.groups[name]
		status, ok := e.statuses[name]
		if !ok {
			continue
		}
		status.tick(e.durations)

		lights := make([]Light, 0, len(ids))
		for _, id := range ids {
			l := Light{ID: id, Color: uint64(status.Color), Remain: status.Counter}
			lights = append(lights, l)
			flat = append(flat, l)
		}
		detail[name] = lights
	}

	return flat, detail
}

// RuleChange applies an external rule override: it
// persistently updates the duration for color, then locates the group
// owning lgtID and sets that group's colour and counter directly. Other
// groups are unaffected until their own next natural transition.
func (e *Engine) RuleChange(lgtID string, color Color, remain int64) {
	e.durationsMu.Lock()
	e.durations.setForColor(color, remain)
	e.durationsMu.Unlock()

	e.groupsMu.Lock()
	var owner string
	for name, ids := range e.groups {
		for _, id := range ids {
			if id == lgtID {
				owner = name
				break
			}
		}
		if owner != "" {
			break
		}
	}
	e.groupsMu.Unlock()

	if owner == "" {
		e.log.Warn().Str("light_id", lgtID).Msg("rule change references unknown light id, ignoring")
		return
	}

	e.statusesMu.Lock()
	if status, ok := e.statuses[owner]; ok {
		status.Color = color
		status.Counter = remain
	}
	e.statusesMu.Unlock()
}

// RoadID returns the configured road id, used for the pub/sub path and
// outbound report URL.
func (e *Engine) RoadID() string {
	return e.roadID
}

// CenterDBURL returns the configured collector URL for this plugin.
func (e *Engine) CenterDBURL() string {
	return e.centerDBURL
}
