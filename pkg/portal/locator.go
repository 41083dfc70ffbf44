package portal

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

// Strategy is how a locator query is interpreted against the live page.
type Strategy string

const (
	ByCSS   Strategy = "css"
	ByXPath Strategy = "xpath"
)

// Locator is a single (strategy, query) pair.
type Locator struct {
	Strategy Strategy `mapstructure:"strategy"`
	Query    string   `mapstructure:"query"`
}

// LocatorSpec is an ordered list of locators for one logical control.
// The portal's markup is not stable, so every control is described by
// several independent fallbacks tried in order; first match wins.
type LocatorSpec struct {
	Name     string    `mapstructure:"name"`
	Locators []Locator `mapstructure:"locators"`
}

// Match is a locator that was confirmed present on the live page. Later
// actions re-address the element through its query rather than holding a
// node handle, which survives re-renders.
type Match struct {
	Locator
	Name string
}

// QueryOpt maps the match's strategy onto the corresponding chromedp
// selector mode.
func (m Match) QueryOpt() chromedp.QueryOption {
	if m.Strategy == ByXPath {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

// probeFunc checks whether a single locator currently resolves. Injected
// so the resolver is testable without a browser.
type probeFunc func(ctx context.Context, loc Locator, clickable bool) error

// Resolver finds elements through ordered fallback locators.
type Resolver struct {
	probe probeFunc
	log   *logrus.Logger
}

func NewResolver(log *logrus.Logger) *Resolver {
	return &Resolver{probe: chromedpProbe, log: log}
}

// Find probes each locator of spec in order, giving each attempt its own
// timeout slice. It returns the first confirmed match, or ok=false when
// none resolved; it never returns an error because absence is a normal
// answer the caller has to interpret.
func (r *Resolver) Find(ctx context.Context, spec LocatorSpec, timeout time.Duration, clickable bool) (Match, bool) {
	for _, loc := range spec.Locators {
		attempt, cancel := context.WithTimeout(ctx, timeout)
		err := r.probe(attempt, loc, clickable)
		cancel()

		if ctx.Err() != nil {
			return Match{}, false
		}
		if err == nil {
			r.log.Debugf("Resolved %q via %s %q", spec.Name, loc.Strategy, loc.Query)
			return Match{Locator: loc, Name: spec.Name}, true
		}
	}
	r.log.Debugf("No locator matched for %q (%d tried)", spec.Name, len(spec.Locators))
	return Match{}, false
}

func chromedpProbe(ctx context.Context, loc Locator, clickable bool) error {
	opt := chromedp.ByQuery
	if loc.Strategy == ByXPath {
		opt = chromedp.BySearch
	}

	if clickable {
		return chromedp.Run(ctx,
			chromedp.WaitVisible(loc.Query, opt),
			chromedp.WaitEnabled(loc.Query, opt),
		)
	}
	return chromedp.Run(ctx, chromedp.WaitReady(loc.Query, opt))
}
