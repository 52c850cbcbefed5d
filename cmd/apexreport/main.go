package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zjy-dev/apexreport/cmd/apexreport/app"
	_ "github.com/zjy-dev/apexreport/internal/coverage/formats"   // Register coverage converters
	_ "github.com/zjy-dev/apexreport/internal/testresult/formats" // Register test result converters
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := app.NewApexReportCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
