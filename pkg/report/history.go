package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// HistoricalEntry is one run in the history log.
type HistoricalEntry struct {
	Timestamp    time.Time `json:"timestamp"`
	RunID        string    `json:"run_id"`
	Passed       bool      `json:"passed"`
	Plans        int       `json:"plans"`
	FailedPlans  int       `json:"failed_plans"`
	ChecksPassed int       `json:"checks_passed"`
	ChecksTotal  int       `json:"checks_total"`
	Duration     string    `json:"duration"`
	ReportPath   string    `json:"report_path,omitempty"`
}

var jsonMarshal = json.Marshal

// AppendToHistory adds one JSON line describing s to the log at
// historyPath, creating the file if needed.
func AppendToHistory(
	historyPath string,
	s *Summary,
	reportPath string,
) error {
	entry := HistoricalEntry{
		Timestamp:    s.GeneratedAt,
		RunID:        s.ID,
		Passed:       s.Passed(),
		Plans:        s.TotalPlans,
		FailedPlans:  s.FailedPlans,
		ChecksPassed: s.PassedChecks,
		ChecksTotal:  s.TotalChecks,
		Duration:     s.TotalDuration.String(),
		ReportPath:   reportPath,
	}

	data, err := jsonMarshal(entry)
	if err != nil {
		return fmt.Errorf(
			"failed to marshal history entry: %w", err,
		)
	}

	file, err := os.OpenFile(
		historyPath,
		os.O_CREATE|os.O_APPEND|os.O_WRONLY,
		0644,
	)
	if err != nil {
		return fmt.Errorf(
			"failed to open history file: %w", err,
		)
	}
	defer func() { _ = file.Close() }()

	_, err = fmt.Fprintln(file, string(data))
	return err
}
