// Package health runs preflight checks before a ranking run: the corpus
// folder and query file must be readable and every enabled backend must
// answer. Checks run concurrently and the report carries the worst status.
package health

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"
)

type Status string

const (
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
)

// Check probes one dependency.
type Check func(ctx context.Context) ComponentHealth

type ComponentHealth struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Report is the aggregated result of all checks.
type Report struct {
	Status     Status                     `json:"status"`
	Components map[string]ComponentHealth `json:"components"`
	Timestamp  string                     `json:"timestamp"`
}

// Names returns the component names in sorted order.
func (r Report) Names() []string {
	names := make([]string, 0, len(r.Components))
	for name := range r.Components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type Checker struct {
	checks map[string]Check
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewChecker() *Checker {
	return &Checker{
		checks: make(map[string]Check),
		logger: slog.Default().With("component", "preflight"),
	}
}

func (c *Checker) Register(name string, check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Run executes every registered check concurrently. Down beats degraded
// beats up.
func (c *Checker) Run(ctx context.Context) Report {
	c.mu.RLock()
	checks := make(map[string]Check, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()
	report := Report{
		Status:     StatusUp,
		Components: make(map[string]ComponentHealth, len(checks)),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	for name, check := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			result := check(ctx)
			result.Latency = time.Since(start).Round(time.Millisecond).String()
			mu.Lock()
			report.Components[name] = result
			mu.Unlock()
		}()
	}
	wg.Wait()

	for name, comp := range report.Components {
		switch comp.Status {
		case StatusDown:
			report.Status = StatusDown
			c.logger.Warn("preflight check failed", "check", name, "message", comp.Message)
		case StatusDegraded:
			if report.Status != StatusDown {
				report.Status = StatusDegraded
			}
		}
	}
	return report
}

// PingCheck adapts a ping function into a Check.
func PingCheck(ping func(ctx context.Context) error) Check {
	return func(ctx context.Context) ComponentHealth {
		if err := ping(ctx); err != nil {
			return ComponentHealth{Status: StatusDown, Message: err.Error()}
		}
		return ComponentHealth{Status: StatusUp}
	}
}

// DirCheck reports whether path is a readable directory. An empty directory
// is degraded: the run would answer every query with nothing.
func DirCheck(path string) Check {
	return func(ctx context.Context) ComponentHealth {
		entries, err := os.ReadDir(path)
		if err != nil {
			return ComponentHealth{Status: StatusDown, Message: err.Error()}
		}
		if len(entries) == 0 {
			return ComponentHealth{Status: StatusDegraded, Message: "folder is empty"}
		}
		return ComponentHealth{Status: StatusUp, Message: fmt.Sprintf("%d entries", len(entries))}
	}
}

// FileCheck reports whether path is a readable regular file.
func FileCheck(path string) Check {
	return func(ctx context.Context) ComponentHealth {
		f, err := os.Open(path)
		if err != nil {
			return ComponentHealth{Status: StatusDown, Message: err.Error()}
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			return ComponentHealth{Status: StatusDown, Message: err.Error()}
		}
		if info.IsDir() {
			return ComponentHealth{Status: StatusDown, Message: "is a directory"}
		}
		return ComponentHealth{Status: StatusUp}
	}
}
