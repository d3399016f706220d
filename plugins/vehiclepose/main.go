// Package main builds the vehicle-pose workload as a Go plugin shared
// library.
package main

import (
	"github.com/autocore-ai/RSU/internal/abi"
	"github.com/autocore-ai/RSU/internal/vehiclepose"
)

const configPath = "./plugins/vehiclepose/config.yaml"

// Run is the exported ABI entry point.
func Run(running, errorFlag *abi.Flag) int32 {
	return vehiclepose.Run(configPath, running, errorFlag)
}

func main() {}
