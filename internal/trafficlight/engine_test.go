package trafficlight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	cfg := &Config{
		RoadID: "1111111",
		LightIDGroup: map[string][]string{
			"group1": {"A", "B"},
			"group2": {"C"},
		},
		Master: "group1",
		Color:  int(Red),
	}
	cfg.Duration.Green = 7
	cfg.Duration.Yellow = 3
	cfg.Duration.Red = 10
	cfg.Duration.Unknown = -1
	return cfg
}

func statusOf(t *testing.T, e *Engine, group string) LightStatus {
	t.Helper()
	e.statusesMu.Lock()
	defer e.statusesMu.Unlock()
	s, ok := e.statuses[group]
	require.True(t, ok, "group %q not found", group)
	return *s
}

func TestInversePhaseInitialisation(t *testing.T) {
	e := NewEngine(testConfig())

	master := statusOf(t, e, "group1")
	assert.Equal(t, Red, master.Color)
	assert.Equal(t, int64(10), master.Counter)

	// master is RED with counter 10 > yellow duration (3), so the inverse is GREEN
	other := statusOf(t, e, "group2")
	assert.Equal(t, Green, other.Color)
	assert.Equal(t, int64(7), other.Counter)
}

// TestSteadyStateTickSequence checks that at t=10, group1 has cycled
// RED(10)->GREEN(7) once, and group2 has cycled GREEN(7)->YELLOW(3)->RED(10).
func TestSteadyStateTickSequence(t *testing.T) {
	e := NewEngine(testConfig())

	for i := 0; i < 10; i++ {
		e.Tick()
	}

	group1 := statusOf(t, e, "group1")
	assert.Equal(t, Green, group1.Color)
	assert.Equal(t, int64(7), group1.Counter)

	group2 := statusOf(t, e, "group2")
	assert.Equal(t, Red, group2.Color)
	assert.Equal(t, int64(10), group2.Counter)
}

func TestTickProducesFlatAndDetailViews(t *testing.T) {
	e := NewEngine(testConfig())

	flat, detail := e.Tick()
	assert.Len(t, flat, 3)
	assert.Len(t, detail["group1"], 2)
	assert.Len(t, detail["group2"], 1)
}

// TestRuleChangeAtT5 checks that a rule-change naming a light in group1
// sets that group's color/counter directly and persists the new green
// duration, leaving group2 untouched.
func TestRuleChangeAtT5(t *testing.T) {
	e := NewEngine(testConfig())

	for i := 0; i < 5; i++ {
		e.Tick()
	}
	group2Before := statusOf(t, e, "group2")

	e.RuleChange("A", Green, 4)

	group1 := statusOf(t, e, "group1")
	assert.Equal(t, Green, group1.Color)
	assert.Equal(t, int64(4), group1.Counter)

	group2After := statusOf(t, e, "group2")
	assert.Equal(t, group2Before, group2After)

	e.durationsMu.Lock()
	greenDuration := e.durations.Green
	e.durationsMu.Unlock()
	assert.Equal(t, int64(4), greenDuration)
}

func TestRuleChangeOnUnknownLightIDIsIgnored(t *testing.T) {
	e := NewEngine(testConfig())
	before := statusOf(t, e, "group1")

	e.RuleChange("no-such-light", Green, 99)

	assert.Equal(t, before, statusOf(t, e, "group1"))
}

func TestUnknownColorFreezesAndCounterGoesNegative(t *testing.T) {
	status := &LightStatus{Color: Unknown, Counter: 0}
	d := Durations{Green: 7, Yellow: 3, Red: 10, Unknown: -1}

	transitioned := status.tick(d)

	assert.False(t, transitioned)
	assert.Equal(t, Unknown, status.Color)
	assert.Equal(t, int64(-1), status.Counter)
}
