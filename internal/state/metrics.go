package state

import (
	"encoding/json"
	"os"
	"time"

	"blogbot/pkg/logx"
)

// Metrics accumulates per-run counters. LastCheck is set by the poster at
// the start of a run; LastUpdate is stamped by the store on merge.
type Metrics struct {
	LastCheck        string `json:"last_check,omitempty"`
	NewArticlesFound int    `json:"new_articles_found"`
	ArticlesPosted   int    `json:"articles_posted"`
	Errors           int    `json:"errors"`
}

// MetricsStore merges run metrics into a JSON file. Keys from previous runs
// that this run does not touch are preserved, so the file is an overwrite-
// by-key record rather than a reset.
type MetricsStore struct {
	path string
	log  logx.Logger

	now func() time.Time
}

func NewMetricsStore(path string, log logx.Logger) *MetricsStore {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &MetricsStore{path: path, log: log, now: time.Now}
}

// Merge writes the run's metrics over the existing record and stamps
// last_update.
func (s *MetricsStore) Merge(m Metrics) error {
	existing := map[string]any{}
	if b, err := os.ReadFile(s.path); err == nil {
		if uerr := json.Unmarshal(b, &existing); uerr != nil {
			s.log.Warn("metrics file malformed; starting fresh", logx.String("path", s.path), logx.Err(uerr))
			existing = map[string]any{}
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	if m.LastCheck != "" {
		existing["last_check"] = m.LastCheck
	}
	existing["new_articles_found"] = m.NewArticlesFound
	existing["articles_posted"] = m.ArticlesPosted
	existing["errors"] = m.Errors
	existing["last_update"] = s.now().Format(time.RFC3339)

	b, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(s.path, b)
}

// Read returns the current metrics record as a generic mapping. Used by
// setup validation and tests.
func (s *MetricsStore) Read() (map[string]any, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
