package commands

import (
	"fmt"

	"github.com/de-tools/report-forge/pkg/runtime/terminal/export"
	"github.com/de-tools/report-forge/pkg/services/config"
	"github.com/de-tools/report-forge/pkg/services/pipeline"
	"github.com/de-tools/report-forge/pkg/services/source"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type GenerateCmd struct {
	configPath   string
	profilesPath string
	profile      string
	input        string
	sourceKind   string
	output       string
	title        string
	amountField  string

	registry *source.Registry
	reporter *export.Reporter
	logger   zerolog.Logger
}

func NewGenerateCmd(registry *source.Registry, reporter *export.Reporter, logger zerolog.Logger) *cobra.Command {
	gc := &GenerateCmd{registry: registry, reporter: reporter, logger: logger}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a sales report document",
		RunE:  gc.run,
	}

	cmd.Flags().StringVar(&gc.configPath, "config", "", "Path to the configuration file")
	cmd.Flags().StringVar(&gc.profilesPath, "profiles", "", "Path to the output profiles file")
	cmd.Flags().StringVar(&gc.profile, "profile", "", "Output profile name")
	cmd.Flags().StringVar(&gc.input, "input", "", "Input file (CSV or sqlite database)")
	cmd.Flags().StringVar(&gc.sourceKind, "source", "csv", "Record source kind (e.g., csv)")
	cmd.Flags().StringVar(&gc.output, "output", "", "Destination path for the report document")
	cmd.Flags().StringVar(&gc.title, "title", "", "Report title")
	cmd.Flags().StringVar(&gc.amountField, "amount-field", "", "Record field holding the numeric amount")

	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func (gc *GenerateCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(gc.configPath)
	if err != nil {
		return err
	}

	if gc.profilesPath != "" && gc.profile != "" {
		registry, err := config.NewProfileRegistry(gc.profilesPath)
		if err != nil {
			return fmt.Errorf("failed to load profiles from %s: %w", gc.profilesPath, err)
		}
		profile, err := registry.GetProfile(ctx, gc.profile)
		if err != nil {
			return err
		}
		if profile.AllowedOutputDir != "" {
			cfg.AllowedOutputDir = profile.AllowedOutputDir
		}
		if profile.LogDir != "" {
			cfg.LogDir = profile.LogDir
		}
	}

	if gc.amountField != "" {
		cfg.AmountField = gc.amountField
	}

	src, err := gc.registry.Create(ctx, gc.sourceKind, source.Config{Path: gc.input})
	if err != nil {
		return fmt.Errorf("failed to create %s source: %w", gc.sourceKind, err)
	}

	pipe := pipeline.New(gc.logger, *cfg)
	result, err := pipe.Run(ctx, pipeline.Request{
		Source:     src,
		OutputPath: gc.output,
		Title:      gc.title,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s (%d bytes)\n", result.OutputPath, result.BytesWritten)
	return gc.reporter.Handle(result.View)
}
