package commands

import (
	"time"

	"github.com/de-tools/report-forge/pkg/services/arena"
	"github.com/de-tools/report-forge/pkg/services/config"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type SweepCmd struct {
	configPath string
	ttlSeconds int
	logger     zerolog.Logger
}

func NewSweepCmd(logger zerolog.Logger) *cobra.Command {
	sc := &SweepCmd{logger: logger}
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Remove stale temp arenas left behind by crashed runs",
		RunE:  sc.run,
	}

	cmd.Flags().StringVar(&sc.configPath, "config", "", "Path to the configuration file")
	cmd.Flags().IntVar(&sc.ttlSeconds, "ttl", 0, "Override the configured arena TTL, in seconds")

	return cmd
}

func (sc *SweepCmd) run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(sc.configPath)
	if err != nil {
		return err
	}

	ttl := time.Duration(cfg.TempFileTTLSeconds) * time.Second
	if sc.ttlSeconds > 0 {
		ttl = time.Duration(sc.ttlSeconds) * time.Second
	}

	return arena.SweepStale(sc.logger, arena.Options{
		Root: cfg.TempRoot,
		TTL:  ttl,
	})
}
