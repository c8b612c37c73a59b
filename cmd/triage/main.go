// Command triage labels GitHub issues with a language model.
//
// Usage:
//
//	triage run 42 --repo acme/widgets
//	triage run --apply=false 42 43 44
//	triage history --history-db runs.db
//	triage mcp
//
// Configuration comes from flags, TRIAGE_* environment variables, a .env
// file and an optional triage.yaml. Provider keys use their usual names
// (OPENAI_API_KEY, ANTHROPIC_API_KEY, GOOGLE_API_KEY) and GITHUB_TOKEN is
// required.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spetersoncode/triage/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, cli.NewApp(), os.Args[1:])
	stop()
	os.Exit(code)
}
