// Command syncd runs the sync server: the Sync Protocol and
// Change-Request moderation HTTP surfaces over the Ledger Store and
// Authoritative Store.
package main

import (
	"fmt"
	"os"

	"github.com/Valstan/MatricaRMZ-sub006/internal/bootstrap"
)

func main() {
	service, err := bootstrap.InitServers()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize %s: %v\n", bootstrap.ApplicationName, err)
		os.Exit(1)
	}

	defer func() {
		if err := service.Logger.Sync(); err != nil {
			service.Logger.Errorf("failed to sync logger: %v", err)
		}
	}()

	service.Run()
}
