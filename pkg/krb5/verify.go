package krb5

import (
	"fmt"
	"io"
	"strings"

	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/eos_io"
	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/execute"
	"github.com/olekukonko/tablewriter"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// CheckStatus is the outcome of one diagnostic command.
type CheckStatus string

const (
	StatusPassed       CheckStatus = "passed"
	StatusFailed       CheckStatus = "failed"
	StatusLaunchFailed CheckStatus = "launch_failed"
)

// Check is a diagnostic command looked up on PATH.
type Check struct {
	Name string
	Args []string
}

func (c Check) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// DefaultChecks lists the ticket cache and keytab with klist.
func DefaultChecks() []Check {
	return []Check{
		{Name: "klist", Args: []string{"-5"}},
		{Name: "klist", Args: []string{"-k"}},
	}
}

// CheckResult is one row of a VerifyReport.
type CheckResult struct {
	Check    Check
	Status   CheckStatus
	ExitCode int
	Stderr   string
	Err      error
}

// VerifyReport holds results in the order the checks ran.
type VerifyReport struct {
	Results []CheckResult
}

// Count returns how many results have status.
func (r VerifyReport) Count(status CheckStatus) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// AllPassed is true when every check passed.
func (r VerifyReport) AllPassed() bool {
	return r.Count(StatusPassed) == len(r.Results)
}

// Verify runs every check in order. A failing or missing command is recorded
// and the remaining checks still run.
func Verify(rc *eos_io.RuntimeContext, runner execute.Runner, checks []Check) VerifyReport {
	logger := otelzap.Ctx(rc.Ctx)
	logger.Info("Testing Kerberos configuration", zap.Int("checks", len(checks)))

	report := VerifyReport{Results: make([]CheckResult, 0, len(checks))}
	for _, check := range checks {
		res, err := runner.Run(rc.Ctx, check.Name, check.Args...)
		result := CheckResult{
			Check:    check,
			ExitCode: res.ExitCode,
			Stderr:   strings.TrimSpace(res.Stderr),
		}

		switch {
		case err != nil:
			result.Status = StatusLaunchFailed
			result.Err = err
			logger.Warn("Check could not be started", zap.String("check", check.String()), zap.Error(err))
		case res.ExitCode != 0:
			result.Status = StatusFailed
			logger.Warn("Check failed",
				zap.String("check", check.String()),
				zap.Int("exit_code", res.ExitCode),
				zap.String("stderr", result.Stderr))
		default:
			result.Status = StatusPassed
			logger.Info("Check passed", zap.String("check", check.String()))
		}

		report.Results = append(report.Results, result)
	}

	logger.Info("Kerberos configuration checks finished",
		zap.Int("passed", report.Count(StatusPassed)),
		zap.Int("failed", report.Count(StatusFailed)),
		zap.Int("launch_failed", report.Count(StatusLaunchFailed)))

	return report
}

// Headers returns the column headers for the report table.
func (r VerifyReport) Headers() []string {
	return []string{"Check", "Result", "Exit", "Detail"}
}

// Rows returns one table row per check.
func (r VerifyReport) Rows() [][]string {
	rows := make([][]string, 0, len(r.Results))
	for _, res := range r.Results {
		exit := fmt.Sprintf("%d", res.ExitCode)
		detail := execute.ExtractSummary(res.Stderr, 1)
		if res.Status == StatusLaunchFailed {
			exit = "-"
			detail = res.Err.Error()
			if execute.IsNotFound(res.Err) {
				detail = res.Check.Name + " not found in PATH"
			}
		}
		rows = append(rows, []string{res.Check.String(), string(res.Status), exit, detail})
	}
	return rows
}

// Print writes the report as a table.
func (r VerifyReport) Print(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(r.Headers())
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	table.AppendBulk(r.Rows())
	table.Render()
}
