package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"digital.vasic.pavlov/pkg/plan"
)

// Summary aggregates the reports of one run.
type Summary struct {
	ID            string         `json:"id" yaml:"id"`
	GeneratedAt   time.Time      `json:"generated_at" yaml:"generated_at"`
	Plans         []PlanSummary  `json:"plans" yaml:"plans"`
	TotalPlans    int            `json:"total_plans" yaml:"total_plans"`
	PassedPlans   int            `json:"passed_plans" yaml:"passed_plans"`
	FailedPlans   int            `json:"failed_plans" yaml:"failed_plans"`
	TotalChecks   int            `json:"total_checks" yaml:"total_checks"`
	PassedChecks  int            `json:"passed_checks" yaml:"passed_checks"`
	FailedChecks  int            `json:"failed_checks" yaml:"failed_checks"`
	PassRate      float64        `json:"pass_rate" yaml:"pass_rate"`
	TotalDuration time.Duration  `json:"total_duration" yaml:"total_duration"`
	Reports       []*plan.Report `json:"reports" yaml:"reports"`
}

// PlanSummary is the one-line view of a plan report.
type PlanSummary struct {
	Plan         string        `json:"plan" yaml:"plan"`
	Source       string        `json:"source,omitempty" yaml:"source,omitempty"`
	Status       string        `json:"status" yaml:"status"`
	ChecksPassed int           `json:"checks_passed" yaml:"checks_passed"`
	ChecksTotal  int           `json:"checks_total" yaml:"checks_total"`
	Duration     time.Duration `json:"duration" yaml:"duration"`
}

// Passed reports whether every plan passed.
func (s *Summary) Passed() bool {
	return s.FailedPlans == 0
}

// Build aggregates reports under runID. Nil reports, left by a
// cancelled run, are skipped. PassRate is the share of passed
// checks.
func Build(runID string, reports []*plan.Report) *Summary {
	summary := &Summary{
		ID:          runID,
		GeneratedAt: time.Now(),
		Plans:       make([]PlanSummary, 0, len(reports)),
		Reports:     make([]*plan.Report, 0, len(reports)),
	}

	for _, r := range reports {
		if r == nil {
			continue
		}

		passed := 0
		for _, res := range r.Results {
			if res.Passed {
				passed++
			}
		}

		ps := PlanSummary{
			Plan:         r.Plan,
			Source:       r.Source,
			Status:       "passed",
			ChecksPassed: passed,
			ChecksTotal:  len(r.Results),
			Duration:     r.Duration,
		}
		if !r.Passed() {
			ps.Status = "failed"
			summary.FailedPlans++
		} else {
			summary.PassedPlans++
		}

		summary.Plans = append(summary.Plans, ps)
		summary.Reports = append(summary.Reports, r)
		summary.TotalPlans++
		summary.TotalChecks += ps.ChecksTotal
		summary.PassedChecks += passed
		summary.TotalDuration += r.Duration
	}

	summary.FailedChecks = summary.TotalChecks - summary.PassedChecks
	if summary.TotalChecks > 0 {
		summary.PassRate =
			float64(summary.PassedChecks) /
				float64(summary.TotalChecks)
	}

	return summary
}

// Save writes s into outputDir as summary_<id><ext> and points
// latest<ext> at it.
func Save(
	s *Summary,
	outputDir string,
	w *Writer,
) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf(
			"failed to create output directory: %w", err,
		)
	}

	data, err := w.Encode(s)
	if err != nil {
		return "", fmt.Errorf(
			"failed to encode summary: %w", err,
		)
	}

	ext := w.Format.Extension()
	path := filepath.Join(
		outputDir, fmt.Sprintf("summary_%s%s", s.ID, ext),
	)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf(
			"failed to write summary: %w", err,
		)
	}

	latest := filepath.Join(outputDir, "latest"+ext)
	_ = os.Remove(latest)
	_ = os.Symlink(filepath.Base(path), latest)

	return path, nil
}

// Markdown renders s as a Markdown document with an overview
// table and every failed step.
func Markdown(s *Summary) string {
	var sb strings.Builder

	sb.WriteString("# Pavlov Run Summary\n\n")
	sb.WriteString(fmt.Sprintf("**Run ID:** %s\n\n", s.ID))
	sb.WriteString(fmt.Sprintf(
		"**Generated:** %s\n\n",
		s.GeneratedAt.Format(time.RFC3339),
	))

	sb.WriteString("## Overview\n\n")
	sb.WriteString("| Plan | Status | Duration | Checks |\n")
	sb.WriteString("|------|--------|----------|--------|\n")
	for _, p := range s.Plans {
		sb.WriteString(fmt.Sprintf(
			"| %s | %s | %v | %d/%d |\n",
			p.Plan, strings.ToUpper(p.Status),
			p.Duration, p.ChecksPassed, p.ChecksTotal,
		))
	}

	sb.WriteString("\n## Statistics\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Plans | %d |\n", s.TotalPlans))
	sb.WriteString(fmt.Sprintf("| Passed Plans | %d |\n", s.PassedPlans))
	sb.WriteString(fmt.Sprintf("| Failed Plans | %d |\n", s.FailedPlans))
	sb.WriteString(fmt.Sprintf("| Checks | %d |\n", s.TotalChecks))
	sb.WriteString(fmt.Sprintf("| Pass Rate | %.0f%% |\n", s.PassRate*100))
	sb.WriteString(fmt.Sprintf("| Total Duration | %v |\n", s.TotalDuration))

	var failures []string
	for _, r := range s.Reports {
		for _, res := range r.Failures() {
			failures = append(failures, fmt.Sprintf(
				"- **%s** step %d `%s`: %s",
				r.Plan, res.Step, res.Check, res.Message,
			))
		}
	}
	if len(failures) > 0 {
		sb.WriteString("\n## Failures\n\n")
		sb.WriteString(strings.Join(failures, "\n"))
		sb.WriteString("\n")
	}

	return sb.String()
}
