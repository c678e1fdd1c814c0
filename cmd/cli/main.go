package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/arclabs561/runctl/pkg/runtime/terminal"
	"github.com/arclabs561/runctl/pkg/services/provider"
	"github.com/arclabs561/runctl/pkg/services/provider/aws"
	"github.com/arclabs561/runctl/pkg/services/provider/runpod"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	cli := terminal.NewCLI(terminal.Options{
		Registry: provider.NewRegistry(map[string]provider.Factory{
			"aws":    aws.Factory,
			"runpod": runpod.Factory,
		}),
		Output: os.Stdout,
	})

	if err := cli.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
