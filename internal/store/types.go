package store

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrRunNotFound = errors.New("run not found")
	ErrNotReadOnly = errors.New("only SELECT and WITH queries are allowed")
)

const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunAborted   = "aborted"
	RunFailed    = "failed"
)

type Run struct {
	ID         string
	Project    string
	BaseModel  string
	Workbook   string
	Status     string
	StartedAt  time.Time
	FinishedAt *time.Time
	Total      int
	Succeeded  int
	Failed     int
	Skipped    int
	NotRun     int
	Error      string
}

type RunSummary struct {
	Status     string
	FinishedAt time.Time
	Succeeded  int
	Failed     int
	Skipped    int
	NotRun     int
	Error      string
}

type CaseRecord struct {
	Index         int
	Name          string
	Profile       string
	Condition     string
	Artifact      string
	Status        string
	Error         string
	InactiveSinks []string
	Duration      time.Duration
}

// CheckReadOnly rejects statements that could modify the ledger.
func CheckReadOnly(query string) error {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return fmt.Errorf("empty query: %w", ErrNotReadOnly)
	}
	switch strings.ToUpper(fields[0]) {
	case "SELECT", "WITH":
		if strings.Contains(strings.TrimSuffix(strings.TrimSpace(query), ";"), ";") {
			return fmt.Errorf("multiple statements: %w", ErrNotReadOnly)
		}
		return nil
	}
	return ErrNotReadOnly
}
