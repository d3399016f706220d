package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Global logger instance
var (
	Log zerolog.Logger
)

// Initialize sets up the global logger with configuration
func Initialize(level string, pretty bool) {
	// Parse log level
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	// Configure output format
	if pretty {
		// Pretty console output for development
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	} else {
		// JSON output for production
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	}

	// Set global logger
	Log = log.With().
		Str("service", "rsu").
		Logger()

	Log.Info().
		Str("level", logLevel.String()).
		Bool("pretty", pretty).
		Msg("Logger initialized")
}

// GetLogger returns the global logger instance
func GetLogger() *zerolog.Logger {
	return &Log
}

// PluginMgr creates a logger for plugin manager lifecycle events
func PluginMgr() *zerolog.Logger {
	l := Log.With().Str("component", "pluginmgr").Logger()
	return &l
}

// Reporter creates a logger for the periodic roster reporter
func Reporter() *zerolog.Logger {
	l := Log.With().Str("component", "reporter").Logger()
	return &l
}

// Control creates a logger for the control HTTP surface
func Control() *zerolog.Logger {
	l := Log.With().Str("component", "control").Logger()
	return &l
}

// TrafficLight creates a logger scoped to a traffic-light plugin instance
func TrafficLight() *zerolog.Logger {
	l := Log.With().Str("component", "trafficlight").Logger()
	return &l
}

// VehiclePose creates a logger scoped to the vehicle-pose plugin instance
func VehiclePose() *zerolog.Logger {
	l := Log.With().Str("component", "vehiclepose").Logger()
	return &l
}

// Plugin creates a logger scoped to a named loaded plugin, tagging each
// entry with the plugin's name in a "plugin" field.
func Plugin(name string) *zerolog.Logger {
	l := Log.With().Str("component", "plugin").Str("plugin", name).Logger()
	return &l
}
