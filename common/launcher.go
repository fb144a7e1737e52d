// Package common holds small cross-cutting helpers shared by every
// component's bootstrap package, mirroring the teacher's top-level
// common package.
package common

import (
	"sync"

	"github.com/Valstan/MatricaRMZ-sub006/common/mlog"
)

// App is anything a Launcher can run as a long-lived process component.
type App interface {
	Run(l *Launcher) error
}

// LauncherOption configures a Launcher.
type LauncherOption func(l *Launcher)

// WithLogger attaches the logger every launched App logs startup/shutdown through.
func WithLogger(logger mlog.Logger) LauncherOption {
	return func(l *Launcher) { l.Logger = logger }
}

// RunApp registers an App to start under the Launcher.
func RunApp(name string, app App) LauncherOption {
	return func(l *Launcher) { l.apps[name] = app }
}

// Launcher starts every registered App in its own goroutine and blocks
// until all of them return.
type Launcher struct {
	Logger mlog.Logger
	apps   map[string]App
	wg     sync.WaitGroup
}

// NewLauncher builds a Launcher with the given options applied.
func NewLauncher(opts ...LauncherOption) *Launcher {
	l := &Launcher{apps: make(map[string]App)}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Run starts every registered app and waits for all of them to return.
func (l *Launcher) Run() {
	l.wg.Add(len(l.apps))

	l.Logger.Infof("starting %d app(s)", len(l.apps))

	for name, app := range l.apps {
		go func(name string, app App) {
			defer l.wg.Done()

			l.Logger.Infof("launcher: %s starting", name)

			if err := app.Run(l); err != nil {
				l.Logger.Errorf("launcher: %s exited with error: %v", name, err)
			}

			l.Logger.Infof("launcher: %s finished", name)
		}(name, app)
	}

	l.wg.Wait()
}
