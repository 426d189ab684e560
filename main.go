// Package main is the entrypoint of the snapguard CLI.
package main

import (
	"github.com/huangsam/snapguard/cmd"
	"github.com/huangsam/snapguard/internal/contract"
	"github.com/huangsam/snapguard/internal/history"
)

func main() {
	err := cmd.Execute()
	if perr := cmd.StopProfiling(); perr != nil {
		contract.LogWarn("Failed to stop profiling", perr)
	}
	history.CloseStores()
	if err != nil {
		contract.LogFatal("snapguard failed", err)
	}
}
