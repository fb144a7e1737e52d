package bootstrap

import (
	"github.com/Valstan/MatricaRMZ-sub006/common"
	"github.com/Valstan/MatricaRMZ-sub006/common/mlog"
)

// Service is the top-level glue a cmd/syncd main.go runs.
type Service struct {
	*Server
	mlog.Logger
}

// Run starts every component under a Launcher. The sync server is the
// only long-running App today; the Launcher shape is kept because the
// teacher's own single-purpose components (audit, crm) are written the
// same way and it is where a future consumer (e.g. a queue-backed
// mirror refresher) would be added without reshaping main.go.
func (s *Service) Run() {
	common.NewLauncher(
		common.WithLogger(s.Logger),
		common.RunApp("HTTP Service", s.Server),
	).Run()
}
