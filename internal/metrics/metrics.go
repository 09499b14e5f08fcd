package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"clearurls/internal/config"
)

// Manager accumulates cleaning counters and writes them in the Prometheus
// textfile format. A nil *Manager is valid and records nothing.
type Manager struct {
	path string
	mu   sync.Mutex
	// counters
	urlsTotal   int64
	urlsChanged int64
	urlsFailed  int64
	providers   int
	lastRunSec  float64
}

func New(cfg *config.Config) *Manager {
	if cfg == nil || !cfg.Metrics.PrometheusTextfile.Enabled || cfg.Metrics.PrometheusTextfile.Path == "" {
		return nil
	}
	p := cfg.Metrics.PrometheusTextfile.Path
	_ = os.MkdirAll(filepath.Dir(p), 0o755)
	return &Manager{path: p}
}

// Observe records the outcome of cleaning one URL.
func (m *Manager) Observe(changed bool, err error) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.urlsTotal++
	switch {
	case err != nil:
		m.urlsFailed++
	case changed:
		m.urlsChanged++
	}
}

func (m *Manager) SetProviders(n int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.providers = n
	m.mu.Unlock()
}

func (m *Manager) ObserveRunSeconds(sec float64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.lastRunSec = sec
	m.mu.Unlock()
}

func (m *Manager) Write() error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f, err := os.CreateTemp(filepath.Dir(m.path), ".metrics.tmp.*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	fmt.Fprintf(f, "# HELP clearurls_urls_total URLs submitted for cleaning.\n")
	fmt.Fprintf(f, "# TYPE clearurls_urls_total counter\n")
	fmt.Fprintf(f, "clearurls_urls_total %d\n", m.urlsTotal)

	fmt.Fprintf(f, "# HELP clearurls_urls_changed_total URLs that were rewritten.\n")
	fmt.Fprintf(f, "# TYPE clearurls_urls_changed_total counter\n")
	fmt.Fprintf(f, "clearurls_urls_changed_total %d\n", m.urlsChanged)

	fmt.Fprintf(f, "# HELP clearurls_urls_failed_total URLs that could not be cleaned.\n")
	fmt.Fprintf(f, "# TYPE clearurls_urls_failed_total counter\n")
	fmt.Fprintf(f, "clearurls_urls_failed_total %d\n", m.urlsFailed)

	fmt.Fprintf(f, "# HELP clearurls_rule_providers Providers in the loaded rule set.\n")
	fmt.Fprintf(f, "# TYPE clearurls_rule_providers gauge\n")
	fmt.Fprintf(f, "clearurls_rule_providers %d\n", m.providers)

	fmt.Fprintf(f, "# HELP clearurls_last_run_seconds Duration of the last run in seconds.\n")
	fmt.Fprintf(f, "# TYPE clearurls_last_run_seconds gauge\n")
	fmt.Fprintf(f, "clearurls_last_run_seconds %.6f\n", m.lastRunSec)

	fmt.Fprintf(f, "# HELP clearurls_metrics_timestamp_seconds UNIX timestamp when this file was written.\n")
	fmt.Fprintf(f, "# TYPE clearurls_metrics_timestamp_seconds gauge\n")
	fmt.Fprintf(f, "clearurls_metrics_timestamp_seconds %d\n", time.Now().Unix())

	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), m.path)
}
