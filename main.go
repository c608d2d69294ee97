// main is the entry point of the peerrank CLI.
package main

import (
	"github.com/huangsam/peerrank/cmd"
	"github.com/huangsam/peerrank/internal/contract"
	"github.com/huangsam/peerrank/internal/iocache"
)

func main() {
	cmd.SetHistoryManager(iocache.Manager)
	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Cannot stop profiling", stopErr)
	}
	iocache.CloseStores()
	if err != nil {
		contract.LogFatal("peerrank failed", err)
	}
}
