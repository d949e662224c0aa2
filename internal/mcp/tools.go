package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"casegen/internal/catalog"
	"casegen/internal/check"
	"casegen/internal/generate"
	"casegen/internal/store"
	"casegen/internal/topology"
)

var errNoLedger = errors.New("no run ledger is configured")

type PlanCasesInput struct {
	Profile   string `json:"profile,omitempty" jsonschema:"restrict to one flow profile"`
	Condition string `json:"condition,omitempty" jsonschema:"restrict to one condition"`
}

type CheckInputsInput struct{}

type GetCatalogInput struct {
	Type string `json:"type,omitempty" jsonschema:"restrict to a component type such as Sink or Source"`
}

type ListRunsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of runs, newest first"`
}

type GetRunCasesInput struct {
	RunID  string `json:"run_id" jsonschema:"run identifier"`
	Status string `json:"status,omitempty" jsonschema:"succeeded, failed, skipped, or not_run"`
}

type CaseOutput struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	Profile   string `json:"profile"`
	Condition string `json:"condition"`
	Artifact  string `json:"artifact"`
}

type PlanCasesOutput struct {
	Profiles   int          `json:"profiles"`
	Conditions int          `json:"conditions"`
	Cases      []CaseOutput `json:"cases"`
}

type IssueOutput struct {
	Severity  string `json:"severity"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Case      string `json:"case,omitempty"`
	Component string `json:"component,omitempty"`
}

type CheckInputsOutput struct {
	Cases    int           `json:"cases"`
	Errors   int           `json:"errors"`
	Warnings int           `json:"warnings"`
	Issues   []IssueOutput `json:"issues"`
}

type ComponentOutput struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type GetCatalogOutput struct {
	Model      string            `json:"model"`
	Components []ComponentOutput `json:"components"`
}

type RunOutput struct {
	ID         string `json:"id"`
	Project    string `json:"project"`
	Status     string `json:"status"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at,omitempty"`
	Total      int    `json:"total"`
	Succeeded  int    `json:"succeeded"`
	Failed     int    `json:"failed"`
	Skipped    int    `json:"skipped"`
	NotRun     int    `json:"not_run"`
	Error      string `json:"error,omitempty"`
}

type ListRunsOutput struct {
	Runs []RunOutput `json:"runs"`
}

type CaseRecordOutput struct {
	Index         int      `json:"index"`
	Name          string   `json:"name"`
	Status        string   `json:"status"`
	Artifact      string   `json:"artifact,omitempty"`
	Error         string   `json:"error,omitempty"`
	InactiveSinks []string `json:"inactive_sinks"`
	DurationMS    int64    `json:"duration_ms"`
}

type GetRunCasesOutput struct {
	Run   RunOutput          `json:"run"`
	Cases []CaseRecordOutput `json:"cases"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "plan_cases",
		Description: "List the cases the workbook expands to, with their artifact names",
	}, s.handlePlanCases)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "check_inputs",
		Description: "Resolve every case without writing and report problems",
	}, s.handleCheckInputs)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_catalog",
		Description: "List the components of the base model",
	}, s.handleGetCatalog)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_runs",
		Description: "List recorded generation runs",
	}, s.handleListRuns)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_run_cases",
		Description: "Return a run and the outcome of its cases",
	}, s.handleGetRunCases)
}

func (s *Server) handlePlanCases(ctx context.Context, req *sdk.CallToolRequest, input PlanCasesInput) (*sdk.CallToolResult, PlanCasesOutput, error) {
	plan, err := generate.LoadPlan(s.cfg, s.schema)
	if err != nil {
		return nil, PlanCasesOutput{}, err
	}

	out := PlanCasesOutput{
		Profiles:   len(plan.Profiles),
		Conditions: len(plan.Conditions),
		Cases:      make([]CaseOutput, 0, len(plan.Cases)),
	}
	for _, c := range plan.Cases {
		if input.Profile != "" && !strings.EqualFold(input.Profile, c.Profile.Name) {
			continue
		}
		if input.Condition != "" && !strings.EqualFold(input.Condition, c.Condition.Name) {
			continue
		}
		out.Cases = append(out.Cases, CaseOutput{
			Index:     c.Index,
			Name:      c.Name,
			Profile:   c.Profile.Name,
			Condition: c.Condition.Name,
			Artifact:  c.ArtifactName,
		})
	}
	return nil, out, nil
}

func (s *Server) handleCheckInputs(ctx context.Context, req *sdk.CallToolRequest, input CheckInputsInput) (*sdk.CallToolResult, CheckInputsOutput, error) {
	report, err := check.Run(ctx, s.cfg, s.schema)
	if err != nil {
		return nil, CheckInputsOutput{}, err
	}

	out := CheckInputsOutput{
		Cases:    report.Cases,
		Errors:   report.Count(check.SeverityError),
		Warnings: report.Count(check.SeverityWarn),
		Issues:   make([]IssueOutput, 0, len(report.Issues)),
	}
	for _, issue := range report.Issues {
		out.Issues = append(out.Issues, IssueOutput{
			Severity:  string(issue.Severity),
			Code:      issue.Code,
			Message:   issue.Message,
			Case:      issue.Case,
			Component: issue.Component,
		})
	}
	return nil, out, nil
}

func (s *Server) handleGetCatalog(ctx context.Context, req *sdk.CallToolRequest, input GetCatalogInput) (*sdk.CallToolResult, GetCatalogOutput, error) {
	var filter catalog.ComponentType
	if input.Type != "" {
		t, ok := catalog.ParseComponentType(input.Type)
		if !ok {
			return nil, GetCatalogOutput{}, fmt.Errorf("unknown component type %q", input.Type)
		}
		filter = t
	}

	model, err := topology.Load(s.cfg.BaseModelPath())
	if err != nil {
		return nil, GetCatalogOutput{}, err
	}
	cat, err := model.Catalog()
	if err != nil {
		return nil, GetCatalogOutput{}, err
	}

	components := cat.Components()
	if filter != "" {
		components = cat.OfType(filter)
	}
	out := GetCatalogOutput{Model: model.Name, Components: make([]ComponentOutput, 0, len(components))}
	for _, component := range components {
		out.Components = append(out.Components, ComponentOutput{Name: component.Name, Type: string(component.Type)})
	}
	return nil, out, nil
}

func (s *Server) handleListRuns(ctx context.Context, req *sdk.CallToolRequest, input ListRunsInput) (*sdk.CallToolResult, ListRunsOutput, error) {
	if s.runs == nil {
		return nil, ListRunsOutput{}, errNoLedger
	}
	runs, err := s.runs.ListRuns(ctx, input.Limit)
	if err != nil {
		return nil, ListRunsOutput{}, err
	}

	out := ListRunsOutput{Runs: make([]RunOutput, 0, len(runs))}
	for _, run := range runs {
		out.Runs = append(out.Runs, runOutputFromStore(run))
	}
	return nil, out, nil
}

func (s *Server) handleGetRunCases(ctx context.Context, req *sdk.CallToolRequest, input GetRunCasesInput) (*sdk.CallToolResult, GetRunCasesOutput, error) {
	if input.RunID == "" {
		return nil, GetRunCasesOutput{}, fmt.Errorf("run_id is required")
	}
	if s.runs == nil {
		return nil, GetRunCasesOutput{}, errNoLedger
	}
	run, err := s.runs.GetRun(ctx, input.RunID)
	if err != nil {
		return nil, GetRunCasesOutput{}, err
	}
	records, err := s.runs.ListCases(ctx, input.RunID, input.Status)
	if err != nil {
		return nil, GetRunCasesOutput{}, err
	}

	out := GetRunCasesOutput{Run: runOutputFromStore(*run), Cases: make([]CaseRecordOutput, 0, len(records))}
	for _, rec := range records {
		out.Cases = append(out.Cases, CaseRecordOutput{
			Index:         rec.Index,
			Name:          rec.Name,
			Status:        rec.Status,
			Artifact:      rec.Artifact,
			Error:         rec.Error,
			InactiveSinks: append([]string{}, rec.InactiveSinks...),
			DurationMS:    rec.Duration.Milliseconds(),
		})
	}
	return nil, out, nil
}

func runOutputFromStore(run store.Run) RunOutput {
	out := RunOutput{
		ID:        run.ID,
		Project:   run.Project,
		Status:    run.Status,
		StartedAt: run.StartedAt.UTC().Format(time.RFC3339),
		Total:     run.Total,
		Succeeded: run.Succeeded,
		Failed:    run.Failed,
		Skipped:   run.Skipped,
		NotRun:    run.NotRun,
		Error:     run.Error,
	}
	if run.FinishedAt != nil {
		out.FinishedAt = run.FinishedAt.UTC().Format(time.RFC3339)
	}
	return out
}
