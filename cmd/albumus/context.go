package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"albumus/internal/config"
	"albumus/internal/logging"
	"albumus/internal/project"
)

type globalFlags struct {
	home      string
	project   string
	logLevel  string
	logFormat string
}

type commandContext struct {
	flags *globalFlags

	appOnce  sync.Once
	app      config.AppPaths
	settings config.Settings
	appErr   error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

// ensureApp resolves the app directory and loads settings, creating the
// settings file from defaults on first use.
func (c *commandContext) ensureApp() (config.AppPaths, config.Settings, error) {
	c.appOnce.Do(func() {
		app, err := config.ResolveAppPaths(c.flags.home)
		if err != nil {
			c.appErr = err
			return
		}
		settings, err := config.EnsureSettings(app.Settings)
		if err != nil {
			c.appErr = err
			return
		}
		c.app = app
		c.settings = settings
	})
	return c.app, c.settings, c.appErr
}

func (c *commandContext) saveSettings(settings config.Settings) error {
	app, _, err := c.ensureApp()
	if err != nil {
		return err
	}
	if err := config.SaveSettings(app.Settings, settings); err != nil {
		return err
	}
	c.settings = settings
	return nil
}

// projectDir returns --project, falling back to the settings' current dir.
func (c *commandContext) projectDir() (string, error) {
	if dir := strings.TrimSpace(c.flags.project); dir != "" {
		return dir, nil
	}
	_, settings, err := c.ensureApp()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(settings.Dir) == "" {
		return "", errors.New("no project selected; pass --project or run `albumus project use DIR`")
	}
	return settings.Dir, nil
}

// loadProject resolves and validates the active project and its config.
func (c *commandContext) loadProject() (project.Layout, *config.Project, error) {
	dir, err := c.projectDir()
	if err != nil {
		return project.Layout{}, nil, err
	}
	layout, err := project.New(dir)
	if err != nil {
		return project.Layout{}, nil, err
	}
	if err := layout.Validate(); err != nil {
		return project.Layout{}, nil, err
	}
	app, _, err := c.ensureApp()
	if err != nil {
		return project.Layout{}, nil, err
	}
	cfg, err := config.LoadProject(app, layout.Root)
	if err != nil {
		return project.Layout{}, nil, fmt.Errorf("load project config: %w", err)
	}
	return layout, cfg, nil
}

// newLogger builds the console logger and, when task is set, the append-only
// task log under the app log directory. Flags win over settings.
func (c *commandContext) newLogger(console io.Writer, task string) (*logging.Logger, error) {
	app, settings, err := c.ensureApp()
	if err != nil {
		return nil, err
	}
	opts := logging.Options{
		Level:   firstNonEmpty(c.flags.logLevel, settings.LogLevel),
		Format:  firstNonEmpty(c.flags.logFormat, settings.LogFormat),
		Console: console,
	}
	if task != "" {
		opts.FilePath = app.LogFile(task)
	}
	return logging.New(opts)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
