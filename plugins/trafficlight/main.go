// Package main builds the traffic-light workload as a Go plugin shared
// library. It is loaded dynamically by the supervisor via plugin.Open and
// must export nothing beyond the Run symbol below.
package main

import (
	"github.com/autocore-ai/RSU/internal/abi"
	"github.com/autocore-ai/RSU/internal/trafficlight"
)

// configPath is hardcoded relative to the process working directory.
const configPath = "./plugins/trafficlight/config.yaml"

// Run is the exported ABI entry point the supervisor looks up by name. Its
// signature must match func(*abi.Flag, *abi.Flag) int32 exactly; a named
// type here would not satisfy that assertion once boxed by plugin.Lookup.
func Run(running, errorFlag *abi.Flag) int32 {
	return trafficlight.Run(configPath, running, errorFlag)
}

func main() {}
