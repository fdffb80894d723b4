// Package config loads declarative notifier graphs from YAML: named
// notifiers, attachment edges, and timed/HTTP driver specs. A loaded
// file is validated as a whole before any registry is built, so a bad
// file never yields a half-wired graph.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/notify/pkg/errors"
)

// File represents a notifiers.yaml configuration.
type File struct {
	Notifiers   []NotifierSpec `yaml:"notifiers"`
	Attachments []EdgeSpec     `yaml:"attachments"`
	Timers      []TimerSpec    `yaml:"timers"`
	Requests    []RequestSpec  `yaml:"requests"`
}

// NotifierSpec declares a plain notifier.
type NotifierSpec struct {
	Name   string `yaml:"name"`
	Locked bool   `yaml:"locked,omitempty"`
}

// EdgeSpec declares an attachment: broadcasts on From are forwarded
// to To.
type EdgeSpec struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// TimerSpec declares a timed notifier.
type TimerSpec struct {
	Name     string   `yaml:"name"`
	Interval Duration `yaml:"interval"`
}

// RequestSpec declares an HTTP notifier with a preconfigured request.
type RequestSpec struct {
	Name   string            `yaml:"name"`
	Method string            `yaml:"method"`
	URL    string            `yaml:"url"`
	Body   string            `yaml:"body,omitempty"`
	Header map[string]string `yaml:"header,omitempty"`
}

// Duration is a time.Duration that unmarshals from strings like
// "250ms" or "2s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// requestMethods are the operations a RequestSpec may declare.
var requestMethods = map[string]bool{
	"GET":       true,
	"HEAD":      true,
	"DELETE":    true,
	"READ":      true,
	"READBYTES": true,
	"POST":      true,
	"PUT":       true,
	"PATCH":     true,
}

// Load reads and validates a configuration file.
func Load(path string) (*File, error) {
	const op = "config.Load"
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, &errors.NotifyError{Op: op, Kind: errors.KindConfig, Msg: "configuration file not found", Err: err}
		}
		return nil, &errors.NotifyError{Op: op, Kind: errors.KindConfig, Msg: "failed to read configuration", Err: err}
	}
	return Parse(data)
}

// Parse unmarshals and validates configuration data.
func Parse(data []byte) (*File, error) {
	const op = "config.Parse"
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &errors.NotifyError{Op: op, Kind: errors.KindConfig, Msg: "failed to parse configuration", Err: err}
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks the whole file and aggregates every problem found.
func (f *File) Validate() error {
	const op = "config.Validate"
	var merr *multierror.Error

	names := make(map[string]bool)
	declare := func(name, what string) {
		if name == "" {
			merr = multierror.Append(merr, fmt.Errorf("%s with empty name", what))
			return
		}
		if names[name] {
			merr = multierror.Append(merr, fmt.Errorf("duplicate name %q", name))
			return
		}
		names[name] = true
	}

	for _, n := range f.Notifiers {
		declare(n.Name, "notifier")
	}
	for _, t := range f.Timers {
		declare(t.Name, "timer")
		if t.Interval <= 0 {
			merr = multierror.Append(merr, fmt.Errorf("timer %q: interval must be positive", t.Name))
		}
	}
	for _, r := range f.Requests {
		declare(r.Name, "request")
		if !requestMethods[r.Method] {
			merr = multierror.Append(merr, fmt.Errorf("request %q: unsupported method %q", r.Name, r.Method))
		}
		if r.URL == "" {
			merr = multierror.Append(merr, fmt.Errorf("request %q: missing url", r.Name))
		}
	}
	for _, e := range f.Attachments {
		if !names[e.From] {
			merr = multierror.Append(merr, fmt.Errorf("attachment references unknown notifier %q", e.From))
		}
		if !names[e.To] {
			merr = multierror.Append(merr, fmt.Errorf("attachment references unknown notifier %q", e.To))
		}
		if e.From != "" && e.From == e.To {
			merr = multierror.Append(merr, fmt.Errorf("attachment from %q to itself", e.From))
		}
	}

	if err := merr.ErrorOrNil(); err != nil {
		return &errors.NotifyError{Op: op, Kind: errors.KindConfig, Msg: "invalid configuration", Err: err}
	}
	return nil
}
