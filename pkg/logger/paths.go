/* pkg/logger/paths.go */

package logger

import (
	"os"

	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/xdg"
)

const appName = "krb5setup"

// PlatformLogPaths returns log file candidates in order of priority.
// KRB5SETUP_LOG_FILE, when set, is the only candidate.
func PlatformLogPaths() []string {
	if p := os.Getenv("KRB5SETUP_LOG_FILE"); p != "" {
		return []string{p}
	}
	return []string{xdg.StatePath(appName, appName+".log")}
}
