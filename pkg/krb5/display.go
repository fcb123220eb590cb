package krb5

import (
	"fmt"
	"io"
	"strings"

	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/eos_io"
	"github.com/charmbracelet/lipgloss"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	infoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

func printOK(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", okStyle.Render("[+]"), fmt.Sprintf(format, args...))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", infoStyle.Render("[*]"), fmt.Sprintf(format, args...))
}

func printWarn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", warnStyle.Render("[!]"), fmt.Sprintf(format, args...))
}

func printErr(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", errStyle.Render("[-]"), fmt.Sprintf(format, args...))
}

// printDocument writes doc between two rules of ruleChar.
func printDocument(w io.Writer, doc string, ruleChar string) {
	rule := strings.Repeat(ruleChar, 50)
	fmt.Fprintln(w, rule)
	fmt.Fprint(w, doc)
	if !strings.HasSuffix(doc, "\n") {
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, rule)
}

// ShowCurrent prints the existing configuration and what gokrb5 makes of it.
// A missing file is reported and is not an error.
func (t *Target) ShowCurrent(rc *eos_io.RuntimeContext, w io.Writer) error {
	logger := otelzap.Ctx(rc.Ctx)

	data, exists, err := t.ReadCurrent(rc)
	if err != nil {
		return err
	}
	if !exists {
		printInfo(w, "No existing %s", t.Path)
		return nil
	}

	fmt.Fprintln(w)
	printInfo(w, "Current %s:", t.Path)
	printDocument(w, string(data), "-")

	summary, err := Lint(string(data))
	switch {
	case err != nil:
		logger.Warn("Current configuration does not parse cleanly", zap.String("path", t.Path), zap.Error(err))
		printWarn(w, "Current configuration: %v", err)
	default:
		printInfo(w, "Parsed: %s", summary)
		if summary.Unsupported != "" {
			printWarn(w, "Some directives were not evaluated: %s", summary.Unsupported)
		}
	}
	return nil
}

// UsageHints returns example commands that use the new configuration.
func UsageHints(req ConfigRequest) []string {
	host := req.KDCHost()
	return []string{
		fmt.Sprintf("kinit username@%s", req.Realm()),
		fmt.Sprintf("evil-winrm -i %s -r %s", host, req.DomainFQDN),
		fmt.Sprintf("impacket-getTGT -dc-ip %s %s/username", host, req.Realm()),
		fmt.Sprintf("bloodhound-python -d %s -k", req.DomainFQDN),
	}
}
