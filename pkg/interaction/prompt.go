// pkg/interaction/prompt.go

package interaction

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/term"
)

const (
	DefaultYesPrompt = "Y/n"
	DefaultNoPrompt  = "y/N"
)

// ReadLine writes label to out and returns one trimmed line from reader.
// A final line without a newline is accepted; EOF with no input is an error.
func ReadLine(ctx context.Context, reader *bufio.Reader, out io.Writer, label string) (string, error) {
	logger := otelzap.Ctx(ctx)
	logger.Debug("Prompting user for input", zap.String("label", label))

	_, _ = fmt.Fprint(out, label+" ")

	text, err := reader.ReadString('\n')
	if err != nil && !(cerr.Is(err, io.EOF) && text != "") {
		logger.Error("Failed to read user input", zap.Error(err))
		return "", cerr.Wrap(err, "read user input")
	}

	return strings.TrimSpace(text), nil
}

// PromptYesNo asks a yes/no question on out and reads the answer from in.
// Empty or unrecognised answers fall back to defaultYes.
func PromptYesNo(ctx context.Context, in io.Reader, out io.Writer, prompt string, defaultYes bool) (bool, error) {
	logger := otelzap.Ctx(ctx)

	defPrompt := DefaultYesPrompt
	if !defaultYes {
		defPrompt = DefaultNoPrompt
	}
	label := fmt.Sprintf("%s [%s]", prompt, defPrompt)

	input, err := ReadLine(ctx, bufio.NewReader(in), out, label)
	if err != nil {
		return false, err
	}

	if answer, ok := NormalizeYesNoInput(input); ok {
		logger.Info("User input parsed", zap.Bool("answer", answer))
		return answer, nil
	}

	logger.Debug("Default applied", zap.String("prompt", prompt), zap.Bool("default_yes", defaultYes))
	return defaultYes, nil
}

// NormalizeYesNoInput returns (answer, recognised) for y/yes/n/no in any case.
func NormalizeYesNoInput(input string) (bool, bool) {
	input = strings.TrimSpace(strings.ToLower(input))
	switch input {
	case YesShort, YesLong:
		return true, true
	case NoShort, NoLong:
		return false, true
	}
	return false, false
}

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

const (
	YesShort = "y"
	YesLong  = "yes"
	NoShort  = "n"
	NoLong   = "no"
)
