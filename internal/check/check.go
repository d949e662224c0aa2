// Package check resolves every case of a project in memory and reports what
// a generation run would trip over, without writing any artifact.
package check

import (
	"context"
	"errors"
	"fmt"

	"casegen/internal/catalog"
	"casegen/internal/config"
	"casegen/internal/generate"
	"casegen/internal/materialize"
	"casegen/internal/resolve"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeInputFormat         = "input_format"
	codeUnknownComponent    = "unknown_component"
	codeTypeMismatch        = "type_mismatch"
	codeConflictingOverride = "conflicting_override"
	codeIncompleteProfile   = "incomplete_profile"
	codeCaseInvalid         = "case_invalid"
	codeUnaddressedSink     = "unaddressed_sink"
	codeSettingsOnly        = "settings_only_condition"
	codeAllSinksInactive    = "all_sinks_inactive"
	codeArtifactExists      = "artifact_exists"
)

type Issue struct {
	Severity  Severity
	Code      string
	Message   string
	Case      string
	Component string
}

type Report struct {
	Cases  int
	Issues []Issue
}

func (r *Report) Count(severity Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			n++
		}
	}
	return n
}

func (r *Report) HasErrors() bool {
	return r.Count(SeverityError) > 0
}

// Run loads the project's inputs and checks them. Structural input problems
// become a single error issue; other load failures are returned.
func Run(ctx context.Context, cfg *config.ProjectConfig, schema *config.Schema) (*Report, error) {
	plan, err := generate.LoadPlan(cfg, schema)
	if err != nil {
		if generate.Classify(err) == generate.ScopeRun {
			return &Report{Issues: []Issue{{
				Severity: SeverityError,
				Code:     codeInputFormat,
				Message:  err.Error(),
			}}}, nil
		}
		return nil, err
	}
	return Plan(ctx, cfg, plan)
}

func Plan(ctx context.Context, cfg *config.ProjectConfig, plan *generate.Plan) (*Report, error) {
	if plan == nil {
		return nil, fmt.Errorf("plan is required")
	}

	report := &Report{Cases: len(plan.Cases), Issues: make([]Issue, 0)}
	report.Issues = append(report.Issues, unaddressedSinks(plan)...)
	report.Issues = append(report.Issues, settingsOnlyConditions(plan)...)

	opts := resolve.Options{
		FlowParameter:   cfg.Activation.FlowParameter,
		RequireComplete: cfg.Activation.RequireCompleteProfiles,
	}
	for _, c := range plan.Cases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		set, err := resolve.Resolve(c, plan.Catalog, opts)
		if err != nil {
			report.Issues = append(report.Issues, issueFromError(c.Name, err))
			continue
		}
		activation := resolve.Activate(set, plan.Catalog, cfg.Threshold()).WithBase(plan.Base)
		if len(activation.Sinks()) > 0 && activation.ActiveCount() == 0 {
			report.Issues = append(report.Issues, Issue{
				Severity: SeverityWarn,
				Code:     codeAllSinksInactive,
				Message:  "every sink is shut in",
				Case:     c.Name,
			})
		}
		if _, err := materialize.Apply(plan.Base, set, activation, c.Name); err != nil {
			report.Issues = append(report.Issues, issueFromError(c.Name, err))
			continue
		}

		if !cfg.Output.Overwrite && !cfg.Output.SkipExisting {
			exists, err := materialize.Exists(cfg.OutputDir(), c.ArtifactName)
			if err != nil {
				return nil, fmt.Errorf("checking %s: %w", c.ArtifactName, err)
			}
			if exists {
				report.Issues = append(report.Issues, Issue{
					Severity: SeverityWarn,
					Code:     codeArtifactExists,
					Message:  fmt.Sprintf("%s already exists and would fail without --overwrite or --resume", c.ArtifactName),
					Case:     c.Name,
				})
			}
		}
	}

	return report, nil
}

func issueFromError(caseName string, err error) Issue {
	issue := Issue{Severity: SeverityError, Code: codeCaseInvalid, Message: err.Error(), Case: caseName}

	var (
		unknown    *catalog.UnknownComponentError
		mismatch   *resolve.ComponentTypeMismatchError
		conflict   *resolve.ConflictingOverrideError
		incomplete *resolve.IncompleteProfileError
	)
	switch {
	case errors.As(err, &unknown):
		issue.Code = codeUnknownComponent
		issue.Component = unknown.Name
	case errors.As(err, &mismatch):
		issue.Code = codeTypeMismatch
		issue.Component = mismatch.Name
	case errors.As(err, &conflict):
		issue.Code = codeConflictingOverride
		issue.Component = conflict.Component
	case errors.As(err, &incomplete):
		issue.Code = codeIncompleteProfile
	}
	return issue
}

// unaddressedSinks warns about catalog sinks no profile gives a flow for.
// They keep the base model's activation in every case.
func unaddressedSinks(plan *generate.Plan) []Issue {
	addressed := make(map[string]bool)
	for _, p := range plan.Profiles {
		for _, e := range p.Entries {
			addressed[e.Sink] = true
		}
	}

	var issues []Issue
	for _, sink := range plan.Catalog.OfType(catalog.Sink) {
		if addressed[sink.Name] {
			continue
		}
		issues = append(issues, Issue{
			Severity:  SeverityWarn,
			Code:      codeUnaddressedSink,
			Message:   fmt.Sprintf("sink %s has no flow in any profile and keeps its base activation", sink.Name),
			Component: sink.Name,
		})
	}
	return issues
}

func settingsOnlyConditions(plan *generate.Plan) []Issue {
	var issues []Issue
	for _, cond := range plan.Conditions {
		touchesComponent := false
		for _, e := range cond.Entries {
			if !e.IsSetting() {
				touchesComponent = true
				break
			}
		}
		if !touchesComponent {
			issues = append(issues, Issue{
				Severity: SeverityWarn,
				Code:     codeSettingsOnly,
				Message:  fmt.Sprintf("condition %s only changes whole-model settings", cond.Name),
			})
		}
	}
	return issues
}
