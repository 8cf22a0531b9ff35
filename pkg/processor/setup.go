package processor

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/travigo/segmenter/pkg/database"
	"github.com/travigo/segmenter/pkg/redis_client"
	"github.com/travigo/segmenter/pkg/rules"
	"github.com/travigo/segmenter/pkg/segments"
	"github.com/travigo/segmenter/pkg/util"
)

const defaultRulesDir = "data/static"

const runLockKey = "segmenter:run-lock"

type Options struct {
	RulesDir   string
	Workers    int
	FlushEvery int

	// Mirror results into MongoDB when it is configured.
	Mirror bool
	// Hold a Redis lock for the duration of each run.
	Lock bool
	// Drop the web API's cached stops responses of every flushed route.
	InvalidateCache bool
}

func RulesDir(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return util.GetEnvironmentVariable("SEGMENTER_RULES_DIR", defaultRulesDir)
}

// New builds a processor backed by db. The returned cleanup closes any
// connection opened here.
func New(ctx context.Context, db *database.DB, options Options) (*Processor, func(), error) {
	tables, err := rules.Load(RulesDir(options.RulesDir))
	if err != nil {
		return nil, nil, err
	}

	p := &Processor{
		Engine:     segments.NewEngine(tables),
		Source:     db,
		Sink:       db,
		Runs:       db,
		Workers:    options.Workers,
		FlushEvery: options.FlushEvery,
	}

	cleanup := func() {}

	if options.Mirror {
		mongoInstance, err := database.ConnectMongoDB(ctx)
		if err != nil {
			return nil, nil, err
		}
		if mongoInstance != nil {
			p.Mirror = mongoInstance
			cleanup = func() {
				if err := mongoInstance.Disconnect(context.Background()); err != nil {
					log.Error().Err(err).Msg("Failed to disconnect from MongoDB")
				}
			}
		}
	}

	if (options.Lock || options.InvalidateCache) && redis_client.Client == nil {
		if err := redis_client.Connect(); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	if options.Lock {
		p.Lock = redis_client.NewRunLock(redis_client.Client, runLockKey, uuid.New().String(), lockTTL)
	}

	if options.InvalidateCache {
		p.Cache = &redis_client.StopsInvalidator{Cache: redis_client.NewStopsCache(redis_client.Client)}
	}

	return p, cleanup, nil
}
