package main

import (
	"fmt"
	"os"

	"github.com/de-tools/report-forge/pkg/runtime/terminal"
	"github.com/de-tools/report-forge/pkg/services/source"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cli := terminal.NewCLI(terminal.Options{
		Registry: source.NewRegistry(map[string]source.Factory{
			"csv":    source.CSVFactory,
			"sqlite": source.SQLiteFactory,
		}),
		Logger: logger,
		Output: os.Stdout,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
