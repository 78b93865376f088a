// Package internal provides the App struct that wires all components of the
// lane engine together and initializes the CLI layer.
package internal

import (
	"os"
	"path/filepath"

	"github.com/valter-silva-au/lane/internal/cli"
	"github.com/valter-silva-au/lane/internal/core"
	"github.com/valter-silva-au/lane/internal/integration"
	"github.com/valter-silva-au/lane/internal/observability"
	"github.com/valter-silva-au/lane/internal/storage"
	"github.com/valter-silva-au/lane/pkg/models"
)

// App holds all service dependencies for the lane engine.
type App struct {
	BasePath string
	Config   *models.Config

	// Configuration
	ConfigMgr core.ConfigurationManager

	// Storage layer
	RegistryMgr storage.RegistryManager

	// Core services
	Layout   core.Layout
	ItemMgr  core.WorkItemManager
	GroupMgr core.GroupManager

	// Integration services
	Vcs  integration.VcsClient
	Tags *integration.TagPublisher

	// Observability
	EventLog observability.TransitionLog
}

// NewApp creates and wires all components of the lane engine. basePath is
// the work tree root: the directory containing .lane/.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadConfig()
	if err != nil {
		return nil, err
	}
	app.Config = cfg

	// --- Storage layer ---
	app.RegistryMgr = storage.NewRegistryManager(basePath, cfg.AdvisoryLock)

	// --- Integration services ---
	app.Vcs = integration.NewGitClient(basePath)
	app.Tags = integration.NewTagPublisher(app.Vcs, cfg.TagPrefix, cfg.Remote, cfg.PushTags, cfg.GitTimeout)

	// --- Observability ---
	logPath := filepath.Join(basePath, storage.EngineDir, "events.jsonl")
	if err := os.MkdirAll(filepath.Dir(logPath), 0o750); err == nil {
		app.EventLog, err = observability.NewTransitionLog(logPath)
		if err != nil {
			// Non-fatal: transitions proceed without an audit trail.
			app.EventLog = nil
		}
	}
	var events core.TransitionRecorder
	if app.EventLog != nil {
		events = app.EventLog
	} else {
		events = noopRecorder{}
	}

	// --- Core services ---
	app.Layout = core.NewLayout(basePath, cfg.WorkDir)
	tags := &tagPublisherAdapter{pub: app.Tags}
	app.ItemMgr = core.NewWorkItemManager(app.Layout, app.RegistryMgr, tags, events, os.Stdout)
	app.GroupMgr = core.NewGroupManager(app.Layout, app.RegistryMgr, events, os.Stdout)

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.ItemMgr = app.ItemMgr
	cli.GroupMgr = app.GroupMgr
	cli.DefaultWorkType = cfg.DefaultWorkType

	return app, nil
}

// Close releases resources held by the App, such as the event log file
// handle. Safe to call when EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath determines the work tree root. It checks the LANE_HOME
// env var, then walks up from the current directory looking for .lane/,
// and falls back to the current directory so `lane` can be run before the
// engine directory exists.
func ResolveBasePath() string {
	if home := os.Getenv("LANE_HOME"); home != "" {
		return home
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	dir := cwd
	for {
		if info, err := os.Stat(filepath.Join(dir, storage.EngineDir)); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return cwd
}

// --- Adapters ---

// tagPublisherAdapter adapts integration.TagPublisher to core.TagPublisher.
type tagPublisherAdapter struct {
	pub *integration.TagPublisher
}

func (a *tagPublisherAdapter) CheckClean() error {
	return a.pub.CheckClean()
}

func (a *tagPublisherAdapter) Publish(id int, title string) (*core.PublishResult, error) {
	result, err := a.pub.Publish(id, title)
	if result == nil {
		return nil, err
	}
	return &core.PublishResult{Tag: result.Tag, Pushed: result.Pushed}, err
}

// noopRecorder discards transition events when the log is unavailable.
type noopRecorder struct{}

func (noopRecorder) RecordTransition(entity string, id int, from, to, note string) {}
