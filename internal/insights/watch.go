package insights

import (
	"sort"
	"sync"

	"github.com/dvloznov/finance-coach/internal/scoring"
)

// Change is the difference between two subscription reports.
type Change struct {
	Version uint64                 `json:"version"`
	Added   []scoring.Subscription `json:"added"`
	Removed []string               `json:"removed"`
	// BecameGray lists merchants that were already subscriptions but are now
	// flagged as gray charges.
	BecameGray []scoring.Subscription `json:"became_gray"`
}

// Empty reports whether nothing changed.
func (c Change) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.BecameGray) == 0
}

// Watcher remembers the last subscription report it saw and reports what
// each new one changes. The first report is the baseline and yields an empty
// Change.
type Watcher struct {
	mu      sync.Mutex
	seen    bool
	version uint64
	last    map[string]scoring.Subscription
}

// NewWatcher creates a watcher with no baseline.
func NewWatcher() *Watcher {
	return &Watcher{}
}

// Observe records report and returns its difference from the previous one.
// A report whose version is not newer than the last one is ignored.
func (w *Watcher) Observe(report SubscriptionReport) Change {
	w.mu.Lock()
	defer w.mu.Unlock()

	change := Change{Version: report.Version}
	if w.seen && report.Version <= w.version {
		return change
	}

	current := make(map[string]scoring.Subscription, len(report.Subscriptions))
	for _, s := range report.Subscriptions {
		current[s.Merchant] = s
	}

	if w.seen {
		// report.Subscriptions is already in a stable order.
		for _, s := range report.Subscriptions {
			prev, ok := w.last[s.Merchant]
			switch {
			case !ok:
				change.Added = append(change.Added, s)
			case s.IsGrayCharge && !prev.IsGrayCharge:
				change.BecameGray = append(change.BecameGray, s)
			}
		}
		for _, s := range w.lastOrder() {
			if _, ok := current[s]; !ok {
				change.Removed = append(change.Removed, s)
			}
		}
	}

	w.seen = true
	w.version = report.Version
	w.last = current
	return change
}

func (w *Watcher) lastOrder() []string {
	names := make([]string, 0, len(w.last))
	for name := range w.last {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
