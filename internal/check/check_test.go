package check

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casegen/internal/config"
	"casegen/internal/generate"
)

func writeProject(t *testing.T, profiles, conditions string) *config.ProjectConfig {
	t.Helper()
	dir := t.TempDir()
	base, err := os.ReadFile(filepath.Join("..", "topology", "testdata", "base.yaml"))
	require.NoError(t, err)

	files := map[string]string{
		"base.yaml":             string(base),
		"inputs/Profiles.csv":   profiles,
		"inputs/Conditions.csv": conditions,
		"casegen.yaml": "project: check\nversion: 1\nbase_model: base.yaml\nworkbook: inputs\n" +
			"sheets:\n  profiles: Profiles\n  conditions: Conditions\n",
	}
	for name, contents := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	}
	cfg, err := config.LoadProjectConfig(filepath.Join(dir, "casegen.yaml"))
	require.NoError(t, err)
	return cfg
}

const header = "Conditions,Component Name,Component Type,Parameter,Value\n"

func codes(report *Report) []string {
	out := make([]string, 0, len(report.Issues))
	for _, issue := range report.Issues {
		out = append(out, issue.Code)
	}
	return out
}

func TestRun_CleanProject(t *testing.T) {
	cfg := writeProject(t, "Sinks,P1\nSk-1,10\nSk-2,4\n", header+"S-HP,Src-1,Source,Pressure,100\n")

	report, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Cases)
	assert.Empty(t, report.Issues)
	assert.False(t, report.HasErrors())
}

func TestRun_CaseProblems(t *testing.T) {
	conditions := header +
		"S-HP,Src-1,Source,Pressure,100\n" +
		"S-MIS,J-1,Pump,PressureDifferential,5\n" +
		"S-DUP,P-101,Pump,PressureDifferential,5\n" +
		"S-DUP,P-101,Pump,PressureDifferential,5\n" +
		"S-TYPO,Src-9,Source,Pressure,1\n" +
		"S-AMB,,SimulationSetting,AmbientTemperature,30\n"
	cfg := writeProject(t, "Sinks,Shut\nSk-1,0\nSk-2,0\n", conditions)

	report, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, report.Cases)
	assert.Equal(t, 3, report.Count(SeverityError))
	assert.ElementsMatch(t, []string{
		codeSettingsOnly,
		codeAllSinksInactive,
		codeTypeMismatch,
		codeConflictingOverride,
		codeUnknownComponent,
	}, removeDuplicates(codes(report)))

	for _, issue := range report.Issues {
		switch issue.Code {
		case codeTypeMismatch:
			assert.Equal(t, "J-1", issue.Component)
			assert.Equal(t, "base_Shut_S-MIS", issue.Case)
		case codeAllSinksInactive:
			assert.Contains(t, []string{"base_Shut_S-HP", "base_Shut_S-AMB"}, issue.Case)
		case codeUnknownComponent:
			assert.Equal(t, "Src-9", issue.Component)
		}
	}
}

func TestRun_UnaddressedSink(t *testing.T) {
	cfg := writeProject(t, "Sinks,P1\nSk-1,10\n", header+"S-HP,Src-1,Source,Pressure,100\n")

	report, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, codeUnaddressedSink, report.Issues[0].Code)
	assert.Equal(t, "Sk-2", report.Issues[0].Component)
	assert.Equal(t, SeverityWarn, report.Issues[0].Severity)
}

func TestRun_BaseExcludedSinkCountsAsShutIn(t *testing.T) {
	cfg := writeProject(t, "Sinks,Shut\nSk-1,0\n", header+"S-HP,Src-1,Source,Pressure,100\n")
	f, err := os.OpenFile(cfg.BaseModelPath(), os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.WriteString("excluded: [Sk-2]\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	report, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{codeUnaddressedSink, codeAllSinksInactive}, codes(report))
}

func TestRun_InputErrorBecomesIssue(t *testing.T) {
	cfg := writeProject(t, "Sinks,Rate_High\nSk-1,1\n", header+"S-HP,Src-1,Source,Pressure,100\n")

	report, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, codeInputFormat, report.Issues[0].Code)
	assert.True(t, report.HasErrors())
}

func TestPlan_ExistingArtifactWarning(t *testing.T) {
	cfg := writeProject(t, "Sinks,P1\nSk-1,10\nSk-2,4\n", header+"S-HP,Src-1,Source,Pressure,100\n")
	plan, err := generate.LoadPlan(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(cfg.OutputDir(), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.OutputDir(), plan.Cases[0].ArtifactName), nil, 0o644))

	report, err := Plan(context.Background(), cfg, plan)
	require.NoError(t, err)
	assert.Equal(t, []string{codeArtifactExists}, codes(report))
	assert.False(t, report.HasErrors())
}

func removeDuplicates(values []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
