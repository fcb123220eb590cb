/*
main.go

Copyright © 2025 Code Monkey Cybersecurity
Contact: git@cybermonkey.net.au

This file is part of krb5setup.

This software is dual-licensed under the Do No Harm License
and the GNU Affero General Public License v3 (AGPL-3.0-or-later).
You may use, modify, and distribute it under the terms of either license.

See LICENSE.agpl and LICENSE.dnh for full details.
*/
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/CodeMonkeyCybersecurity/krb5setup/cmd"
	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/telemetry"
	"go.uber.org/zap"
)

func main() {
	logger.InitializeWithFallback()

	if err := telemetry.Init("krb5setup"); err != nil {
		logger.L().Warn("Tracing disabled", zap.Error(err))
	}

	code := cmd.Execute()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := telemetry.Shutdown(ctx); err != nil {
		logger.L().Warn("Failed to flush traces", zap.Error(err))
	}
	cancel()

	if err := logger.Sync(); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Failed to flush logs: %v\n", err)
	}
	os.Exit(code)
}
