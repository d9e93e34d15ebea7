// Package config loads the session description: which windows to open and
// how each of them paces its redraws.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Profile enables CPU profiling for the session.
	Profile bool `yaml:"profile"`

	Windows []Window `yaml:"windows"`
}

type Window struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`

	// Cadence is the redraw interval in monitor refresh intervals.
	Cadence int `yaml:"cadence"`

	// Animate redraws continuously instead of on input.
	Animate bool `yaml:"animate"`
}

const (
	defaultWidth  = 800
	defaultHeight = 600
)

// Default is the session used when no config file is given: one window at
// the default size.
func Default() *Config {
	return &Config{
		Windows: []Window{
			{Title: "maple", Width: defaultWidth, Height: defaultHeight},
		},
	}
}

// Load reads and validates a session config. Missing window sizes fall
// back to the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

func Parse(data []byte) (*Config, error) {
	var cfg Config

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	if len(cfg.Windows) == 0 {
		return nil, fmt.Errorf("config names no windows")
	}

	for i := range cfg.Windows {
		w := &cfg.Windows[i]

		if w.Width <= 0 {
			w.Width = defaultWidth
		}
		if w.Height <= 0 {
			w.Height = defaultHeight
		}
		if w.Cadence < 0 {
			return nil, fmt.Errorf("window %q: negative cadence %d", w.Title, w.Cadence)
		}
		if w.Title == "" {
			w.Title = fmt.Sprintf("window %d", i+1)
		}
	}

	return &cfg, nil
}
