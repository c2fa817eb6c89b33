package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/agentdeck/agentdeck/convo"
	"github.com/agentdeck/agentdeck/dispatch"
	"github.com/agentdeck/agentdeck/history"
)

// Config is the optional YAML configuration. Flags override it.
type Config struct {
	// MaxMessages bounds each stored conversation.
	MaxMessages int `yaml:"maxMessages"`
	// SaveDir enables conversation persistence when set.
	SaveDir string `yaml:"saveDir"`
	// Agents pins the parser variant per session id, e.g. "claude".
	Agents map[string]string `yaml:"agents"`
}

// loadConfig reads the config file, tolerating its absence.
func loadConfig() (Config, error) {
	path := cfgPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, nil
		}
		path = filepath.Join(home, ".config", "agentdeck", "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && cfgPath == "" {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// parseKind maps a config agent name to a parser kind.
func parseKind(name string) (convo.AgentKind, bool) {
	switch name {
	case "codex":
		return convo.KindCodex, true
	case "claude":
		return convo.KindClaude, true
	case "plaintext":
		return convo.KindPlainText, true
	default:
		return convo.KindPlainText, false
	}
}

// newEngine builds the store and dispatcher from config, applying any
// per-session agent pins.
func newEngine(cfg Config, extraSinks ...dispatch.Sink) (*history.Store, *dispatch.Dispatcher) {
	var storeOpts []history.Option
	if cfg.MaxMessages > 0 {
		storeOpts = append(storeOpts, history.WithMaxMessages(cfg.MaxMessages))
	}
	if cfg.SaveDir != "" {
		storeOpts = append(storeOpts, history.WithSaveDir(cfg.SaveDir))
	}
	store := history.NewStore(storeOpts...)

	sinks := append([]dispatch.Sink{store}, extraSinks...)
	d := dispatch.New(teeSink(sinks))
	for sessionID, agent := range cfg.Agents {
		kind, ok := parseKind(agent)
		if !ok {
			continue
		}
		d.SetKind(sessionID, kind)
	}
	return store, d
}

// teeSink fans one update out to several sinks.
type teeSink []dispatch.Sink

func (t teeSink) Apply(u dispatch.MessageUpdate) {
	for _, s := range t {
		s.Apply(u)
	}
}
