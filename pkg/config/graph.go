package config

import (
	"context"
	"net/http"
	"time"

	"github.com/go-drift/notify/pkg/errors"
	"github.com/go-drift/notify/pkg/httpnotify"
	"github.com/go-drift/notify/pkg/notify"
	"github.com/go-drift/notify/pkg/timed"
)

// Graph holds the registries built from a validated File.
type Graph struct {
	Notifiers map[string]*notify.Notifier
	Timers    map[string]*timed.TimedNotifier
	Requests  map[string]*httpnotify.HTTPNotifier

	specs map[string]RequestSpec
}

// Build instantiates every declared registry and wires the attachment
// edges. All nodes are created before any edge is wired, and lock
// flags are applied last, so a partially built graph is never
// observable through the returned value.
func (f *File) Build() (*Graph, error) {
	g := &Graph{
		Notifiers: make(map[string]*notify.Notifier),
		Timers:    make(map[string]*timed.TimedNotifier),
		Requests:  make(map[string]*httpnotify.HTTPNotifier),
		specs:     make(map[string]RequestSpec),
	}

	for _, spec := range f.Notifiers {
		n, err := notify.New(nil)
		if err != nil {
			return nil, err
		}
		g.Notifiers[spec.Name] = n
	}
	for _, spec := range f.Timers {
		t, err := timed.NewTimed(time.Duration(spec.Interval), nil)
		if err != nil {
			return nil, err
		}
		g.Timers[spec.Name] = t
	}
	for _, spec := range f.Requests {
		h, err := httpnotify.New(nil)
		if err != nil {
			return nil, err
		}
		g.Requests[spec.Name] = h
		g.specs[spec.Name] = spec
	}

	for _, edge := range f.Attachments {
		from := g.notifierOf(edge.From)
		to := g.notifierOf(edge.To)
		if _, err := from.Attach(to); err != nil {
			return nil, err
		}
	}

	for _, spec := range f.Notifiers {
		if spec.Locked {
			g.Notifiers[spec.Name].LockListeners()
		}
	}
	return g, nil
}

// notifierOf returns the core notifier behind any declared name.
// Names are validated before Build, so lookups cannot miss.
func (g *Graph) notifierOf(name string) *notify.Notifier {
	if n, ok := g.Notifiers[name]; ok {
		return n
	}
	if t, ok := g.Timers[name]; ok {
		return t.Notifier
	}
	return g.Requests[name].Notifier
}

// Fire performs the declared request once, broadcasting the outcome
// through the named HTTP notifier.
func (g *Graph) Fire(ctx context.Context, name string) (any, error) {
	const op = "config.Fire"
	h, ok := g.Requests[name]
	if !ok {
		return nil, &errors.NotifyError{Op: op, Kind: errors.KindConfig, Msg: "unknown request " + name}
	}
	spec := g.specs[name]
	header := make(http.Header, len(spec.Header))
	for key, val := range spec.Header {
		header.Set(key, val)
	}
	switch spec.Method {
	case "GET":
		return h.Get(ctx, spec.URL, header)
	case "HEAD":
		return h.Head(ctx, spec.URL, header)
	case "DELETE":
		return h.Delete(ctx, spec.URL, header)
	case "READ":
		return h.Read(ctx, spec.URL, header)
	case "READBYTES":
		return h.ReadBytes(ctx, spec.URL, header)
	case "POST":
		return h.Post(ctx, spec.URL, []byte(spec.Body), header)
	case "PUT":
		return h.Put(ctx, spec.URL, []byte(spec.Body), header)
	case "PATCH":
		return h.Patch(ctx, spec.URL, []byte(spec.Body), header)
	}
	return nil, &errors.NotifyError{Op: op, Kind: errors.KindConfig, Msg: "unsupported method " + spec.Method}
}
