package preview

import (
	"sync"
	"time"

	"git.home.luguber.info/inful/mdbear/internal/site"
)

// buildStatus tracks the latest build for /_status. It is written by the
// rebuild worker and read by HTTP handlers.
type buildStatus struct {
	mu           sync.RWMutex
	builds       int
	failures     int
	last         *site.Report
	lastTrigger  string
	lastError    string
	lastGoodAt   time.Time
	hasGoodBuild bool
}

func (bs *buildStatus) record(trigger string, report *site.Report, err error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.builds++
	bs.last = report
	bs.lastTrigger = trigger
	if err != nil {
		bs.failures++
		bs.lastError = err.Error()
		return
	}
	bs.lastError = ""
	bs.hasGoodBuild = true
	if report != nil {
		bs.lastGoodAt = report.End
	}
}

// StatusSnapshot is the JSON body of /_status.
type StatusSnapshot struct {
	Builds       int           `json:"builds"`
	Failures     int           `json:"failures"`
	HasGoodBuild bool          `json:"has_good_build"`
	LastGoodAt   *time.Time    `json:"last_good_at,omitempty"`
	LastTrigger  string        `json:"last_trigger,omitempty"`
	LastError    string        `json:"last_error,omitempty"`
	Last         *site.Report  `json:"last,omitempty"`
	History      []HistoryItem `json:"history"`
	// Recorded is the number of builds in the history store.
	Recorded int `json:"recorded"`
}

// HistoryItem is a condensed history entry.
type HistoryItem struct {
	BuildID    string    `json:"build_id"`
	Trigger    string    `json:"trigger"`
	Start      time.Time `json:"start"`
	DurationMS int64     `json:"duration_ms"`
	Outcome    string    `json:"outcome"`
	Pages      int       `json:"pages"`
	Skipped    int       `json:"skipped"`
	Error      string    `json:"error,omitempty"`
}

func (bs *buildStatus) snapshot() StatusSnapshot {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	s := StatusSnapshot{
		Builds:       bs.builds,
		Failures:     bs.failures,
		HasGoodBuild: bs.hasGoodBuild,
		LastTrigger:  bs.lastTrigger,
		LastError:    bs.lastError,
		Last:         bs.last,
		History:      []HistoryItem{},
	}
	if bs.hasGoodBuild {
		t := bs.lastGoodAt
		s.LastGoodAt = &t
	}
	return s
}
