package main

import (
	"context"

	"cookscrape-backend/cmd/cookscrape-cli/commands"
	"cookscrape-backend/lib/serviceutil"
	"cookscrape-backend/lib/telemetry"
)

func main() {
	ctx := context.Background()
	t, err := telemetry.SetupFromEnv(ctx, "cookscrape-cli")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	defer t.Shutdown(context.Background())

	commands.ExecuteContext(ctx)
}
