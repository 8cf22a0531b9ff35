package processor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/travigo/segmenter/pkg/busdata"
	"github.com/travigo/segmenter/pkg/database"
	"github.com/travigo/segmenter/pkg/segments"
)

const (
	DefaultFlushEvery = 100
	DefaultWorkers    = 8
)

var ErrRunLocked = errors.New("another segment run holds the lock")

// RouteSource loads the inputs of a route.
type RouteSource interface {
	ListRouteIDs(ctx context.Context, city string) ([]int64, error)
	GetRoute(ctx context.Context, routeID int64) (*busdata.Route, error)
	GetRouteStops(ctx context.Context, routeID int64) ([]busdata.Stop, error)
	GetFareZones(ctx context.Context, routeID int64) ([]busdata.FareZoneRecord, error)
}

type SegmentSink interface {
	WriteSegments(ctx context.Context, batch []database.RouteSegments) error
}

type RunRecorder interface {
	CreateRun(ctx context.Context, routesTotal int) (*database.Run, error)
	FinishRun(ctx context.Context, run *database.Run) error
}

// CacheInvalidator forgets anything derived from the old segments of routes.
type CacheInvalidator interface {
	InvalidateRoutes(ctx context.Context, routeIDs []int64) error
}

type Locker interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type Processor struct {
	Engine *segments.Engine
	Source RouteSource
	Sink   SegmentSink

	// Optional
	Mirror SegmentSink
	Cache  CacheInvalidator
	Runs   RunRecorder
	Lock   Locker

	Workers    int
	FlushEvery int
}

type Summary struct {
	RunID     string
	Total     int
	Processed int
	Failed    int
	Cancelled bool
	Duration  time.Duration
}

func (p *Processor) workers() int {
	if p.Workers > 0 {
		return p.Workers
	}
	return DefaultWorkers
}

func (p *Processor) flushEvery() int {
	if p.FlushEvery > 0 {
		return p.FlushEvery
	}
	return DefaultFlushEvery
}

// LoadRoute gathers everything the engine needs for one route.
func (p *Processor) LoadRoute(ctx context.Context, routeID int64) (*segments.RouteData, error) {
	route, err := p.Source.GetRoute(ctx, routeID)
	if err != nil {
		return nil, err
	}

	stops, err := p.Source.GetRouteStops(ctx, routeID)
	if err != nil {
		return nil, err
	}

	fareZones, err := p.Source.GetFareZones(ctx, routeID)
	if err != nil {
		return nil, err
	}

	return &segments.RouteData{
		Route:     *route,
		Stops:     stops,
		FareZones: fareZones,
	}, nil
}

func (p *Processor) ProcessRoute(ctx context.Context, routeID int64) (*segments.Result, error) {
	data, err := p.LoadRoute(ctx, routeID)
	if err != nil {
		return nil, err
	}

	return p.Engine.Process(data)
}

// RunAll processes every route, optionally limited to one city.
func (p *Processor) RunAll(ctx context.Context, city string) (*Summary, error) {
	routeIDs, err := p.Source.ListRouteIDs(ctx, city)
	if err != nil {
		return nil, err
	}

	return p.Run(ctx, routeIDs)
}

// Run computes and stores segments for the given routes. A failing route is
// logged and skipped. Completed routes are flushed before returning, also
// when ctx is cancelled.
func (p *Processor) Run(ctx context.Context, routeIDs []int64) (*Summary, error) {
	startTime := time.Now()

	if p.Lock != nil {
		acquired, err := p.Lock.Acquire(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire run lock: %w", err)
		}
		if !acquired {
			return nil, ErrRunLocked
		}
		defer func() {
			if err := p.Lock.Release(context.Background()); err != nil {
				log.Error().Err(err).Msg("Failed to release run lock")
			}
		}()
	}

	summary := &Summary{Total: len(routeIDs)}

	var run *database.Run
	if p.Runs != nil {
		var err error
		run, err = p.Runs.CreateRun(ctx, len(routeIDs))
		if err != nil {
			return nil, err
		}
		summary.RunID = run.ID
	}

	runErr := p.run(ctx, routeIDs, summary)
	summary.Duration = time.Since(startTime)

	if run != nil {
		run.RoutesProcessed = summary.Processed
		run.RoutesFailed = summary.Failed
		switch {
		case runErr != nil:
			run.Status = database.RunStatusFailed
		case summary.Cancelled:
			run.Status = database.RunStatusCancelled
		default:
			run.Status = database.RunStatusCompleted
		}

		if err := p.Runs.FinishRun(context.Background(), run); err != nil {
			log.Error().Err(err).Str("run", run.ID).Msg("Failed to record run")
		}
	}

	log.Info().
		Str("run", summary.RunID).
		Int("total", summary.Total).
		Int("processed", summary.Processed).
		Int("failed", summary.Failed).
		Bool("cancelled", summary.Cancelled).
		Str("duration", summary.Duration.String()).
		Msg("Segment run finished")

	return summary, runErr
}

func (p *Processor) run(ctx context.Context, routeIDs []int64, summary *Summary) error {
	flushEvery := p.flushEvery()

	for batchStart := 0; batchStart < len(routeIDs); batchStart += flushEvery {
		if ctx.Err() != nil {
			summary.Cancelled = true
			return nil
		}

		batchEnd := min(batchStart+flushEvery, len(routeIDs))

		var failed atomic.Int64
		results := p.processBatch(ctx, routeIDs[batchStart:batchEnd], &failed)

		summary.Failed += int(failed.Load())

		if err := p.flush(ctx, results); err != nil {
			return err
		}
		summary.Processed += len(results)

		log.Info().
			Int("done", batchEnd).
			Int("total", len(routeIDs)).
			Int("failed", summary.Failed).
			Msg("Flushed segment batch")
	}

	if ctx.Err() != nil {
		summary.Cancelled = summary.Processed+summary.Failed < summary.Total
	}

	return nil
}

func (p *Processor) processBatch(ctx context.Context, routeIDs []int64, failed *atomic.Int64) []database.RouteSegments {
	workerPool := pool.NewWithResults[*database.RouteSegments]().WithMaxGoroutines(p.workers())

	for _, routeID := range routeIDs {
		workerPool.Go(func() *database.RouteSegments {
			if ctx.Err() != nil {
				return nil
			}

			result, err := p.ProcessRoute(ctx, routeID)
			if err != nil {
				failed.Add(1)
				log.Error().Err(err).Int64("route", routeID).Msg("Failed to compute segments")
				return nil
			}

			return &database.RouteSegments{RouteID: result.RouteID, Stops: result.Stops}
		})
	}

	var batch []database.RouteSegments
	for _, result := range workerPool.Wait() {
		if result != nil {
			batch = append(batch, *result)
		}
	}

	return batch
}

// flush writes with a context that survives cancellation so finished work is kept.
func (p *Processor) flush(ctx context.Context, batch []database.RouteSegments) error {
	if len(batch) == 0 {
		return nil
	}

	writeCtx := context.WithoutCancel(ctx)

	if err := p.Sink.WriteSegments(writeCtx, batch); err != nil {
		return fmt.Errorf("failed to flush %d routes: %w", len(batch), err)
	}

	if p.Mirror != nil {
		if err := p.Mirror.WriteSegments(writeCtx, batch); err != nil {
			log.Error().Err(err).Int("routes", len(batch)).Msg("Failed to mirror segments")
		}
	}

	if p.Cache != nil {
		routeIDs := make([]int64, len(batch))
		for i, routeSegments := range batch {
			routeIDs[i] = routeSegments.RouteID
		}

		if err := p.Cache.InvalidateRoutes(writeCtx, routeIDs); err != nil {
			log.Error().Err(err).Int("routes", len(batch)).Msg("Failed to invalidate cached stops")
		}
	}

	return nil
}
