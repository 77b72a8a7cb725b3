package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/report-forge/pkg/models/domain"
	"github.com/de-tools/report-forge/pkg/services/arena"
	"github.com/de-tools/report-forge/pkg/services/chart"
	"github.com/de-tools/report-forge/pkg/services/config"
	"github.com/de-tools/report-forge/pkg/services/guard"
	"github.com/de-tools/report-forge/pkg/services/report"
	"github.com/de-tools/report-forge/pkg/services/runlog"
	"github.com/de-tools/report-forge/pkg/services/source"
	"github.com/de-tools/report-forge/pkg/services/stats"
)

// Stage names the phases of a single run. Failure can occur in any
// stage; unlocking and cleanup still run before the error surfaces.
type Stage string

const (
	StageInitializing Stage = "initializing"
	StageAssembling   Stage = "assembling"
	StageValidating   Stage = "validating"
	StageLocking      Stage = "locking"
	StageWriting      Stage = "writing"
	StageUnlocking    Stage = "unlocking"
	StageCleaningUp   Stage = "cleaning_up"
	StageRotatingLog  Stage = "rotating_log"
	StageDone         Stage = "done"
)

// ErrBadRequest marks requests no run can be built from. These are
// reported before any work begins.
var ErrBadRequest = errors.New("invalid run request")

// Request describes one report run. Exactly one of OutputPath and Sink
// is used: a path goes through validation and locking, a sink bypasses
// both since no shared file is touched.
type Request struct {
	Source     source.Source
	OutputPath string
	Sink       io.Writer
	Title      string
}

type Result struct {
	OutputPath   string
	BytesWritten int
	RotatedLog   string
	View         domain.AggregateView
}

// Pipeline wires the record source, aggregator, rasterizer, assembler
// and output guard into a single run with guaranteed finalization.
type Pipeline struct {
	cfg    config.Config
	guard  *guard.Guard
	logger zerolog.Logger
}

func New(logger zerolog.Logger, cfg config.Config) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		guard:  guard.New(logger, guard.Options{Retries: cfg.LockRetries}),
		logger: logger,
	}
}

// Run executes one report run end to end. Whatever stage fails, the
// lock (if held) is released and the arena is torn down before the
// error is returned.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	logger := p.logger.With().Str("component", "pipeline").Logger()
	ctx = logger.WithContext(ctx)

	stage := StageInitializing
	fail := func(err error) (*Result, error) {
		return nil, fmt.Errorf("failed at %s: %w", stage, err)
	}

	if req.Source == nil {
		return fail(fmt.Errorf("%w: no record source", ErrBadRequest))
	}
	if req.OutputPath == "" && req.Sink == nil {
		return fail(fmt.Errorf("%w: no output path or sink", ErrBadRequest))
	}
	if req.OutputPath != "" && p.cfg.AllowedOutputDir == "" {
		return fail(fmt.Errorf("%w: allowed_output_dir is not configured", ErrBadRequest))
	}

	runLog := runlog.New(logger, runlog.Options{
		Dir:       p.cfg.LogDir,
		Retention: time.Duration(p.cfg.LogRetentionDays) * 24 * time.Hour,
	})
	runLog.Append("run started")

	arenaOpts := arena.Options{
		Root: p.cfg.TempRoot,
		TTL:  time.Duration(p.cfg.TempFileTTLSeconds) * time.Second,
	}
	if err := arena.SweepStale(logger, arenaOpts); err != nil {
		logger.Warn().Err(err).Msg("stale arena sweep failed")
	}

	ar, err := arena.Open(logger, arenaOpts)
	if err != nil {
		runLog.Close()
		return fail(err)
	}

	var ticket *guard.LockTicket
	defer func() {
		// Unlocking and CleaningUp run on every exit path.
		if err := p.guard.ReleaseLock(ticket); err != nil {
			logger.Warn().Err(err).Msg("failed to release lock during finalization")
		}
		ar.CloseAll()
		runLog.Close()
	}()

	stage = StageAssembling
	records, err := req.Source.Records(ctx)
	if err != nil {
		return fail(err)
	}
	runLog.Appendf("loaded %d records", len(records))

	view, err := stats.Aggregate(records, stats.Fields{
		Amount:   p.cfg.AmountField,
		Date:     p.cfg.DateField,
		Category: p.cfg.CategoryField,
		Entity:   p.cfg.EntityField,
	})
	if err != nil {
		return fail(err)
	}

	rasterizer := chart.New(logger, ar, chart.Options{
		Enabled:  !p.cfg.ChartsDisabled,
		FontsDir: p.cfg.FontsDir,
	})
	assembler := report.New(rasterizer, runLog, report.Settings{
		Title:            req.Title,
		MaxDataRows:      p.cfg.MaxDataRows,
		MaxBarCategories: p.cfg.MaxBarCategories,
		MaxPieCategories: p.cfg.MaxPieCategories,
		ChartWidth:       p.cfg.ChartWidth,
		ChartHeight:      p.cfg.ChartHeight,
	})

	doc, err := assembler.Generate(ctx, view)
	if err != nil {
		return fail(err)
	}

	result := &Result{BytesWritten: len(doc), View: view}

	if req.Sink != nil {
		stage = StageWriting
		if _, err := req.Sink.Write(doc); err != nil {
			return fail(fmt.Errorf("failed to write document to sink: %w", err))
		}
		runLog.Append("document written to sink")
	} else {
		stage = StageValidating
		canonical, err := p.guard.Validate(req.OutputPath, p.cfg.AllowedOutputDir)
		if err != nil {
			return fail(err)
		}

		stage = StageLocking
		ticket, err = p.guard.AcquireLock(ctx, canonical)
		if err != nil {
			return fail(err)
		}
		runLog.Appendf("lock acquired on %s", canonical)

		stage = StageWriting
		if err := os.WriteFile(canonical, doc, 0o644); err != nil {
			return fail(fmt.Errorf("failed to write document: %w", err))
		}
		result.OutputPath = canonical
		runLog.Appendf("document written to %s", canonical)

		stage = StageUnlocking
		if err := p.guard.ReleaseLock(ticket); err != nil {
			return fail(err)
		}
		ticket = nil
	}

	stage = StageCleaningUp
	ar.CloseAll()

	stage = StageRotatingLog
	runLog.Append("run completed")
	rotated, err := runLog.Rotate()
	if err != nil {
		logger.Warn().Err(err).Msg("run log rotation failed")
	}
	result.RotatedLog = rotated

	stage = StageDone
	logger.Info().Str("output", result.OutputPath).Int("bytes", result.BytesWritten).Msg("report run finished")
	return result, nil
}
