package redis_client

import (
	"context"
	"fmt"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/segmenter/pkg/util"
)

var Client *redis.Client
var QueueConnection rmq.Connection

const defaultConnectionAddress = "localhost:6379"
const defaultConnectionPassword = ""
const defaultDatabase = 0

const queueTag = "segmenter"

func Connect() error {
	address := defaultConnectionAddress
	password := defaultConnectionPassword

	env := util.GetEnvironmentVariables()

	if env["SEGMENTER_REDIS_ADDRESS"] != "" {
		address = env["SEGMENTER_REDIS_ADDRESS"]
	}

	if env["SEGMENTER_REDIS_PASSWORD"] != "" {
		password = env["SEGMENTER_REDIS_PASSWORD"]
	}

	database, err := util.GetEnvironmentInt("SEGMENTER_REDIS_DATABASE", defaultDatabase)
	if err != nil {
		return fmt.Errorf("invalid SEGMENTER_REDIS_DATABASE: %w", err)
	}

	Client = redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	})

	statusCmd := Client.Ping(context.Background())
	err = statusCmd.Err()
	if err != nil {
		return err
	}

	errChan := make(chan error, 10)
	go logQueueErrors(errChan)

	QueueConnection, err = rmq.OpenConnectionWithRedisClient(queueTag, Client, errChan)
	if err != nil {
		return err
	}

	log.Info().Str("address", address).Int("database", database).Msg("Connected to Redis")

	return nil
}

func logQueueErrors(errChan <-chan error) {
	for err := range errChan {
		log.Error().Err(err).Msg("Queue connection error")
	}
}

// RunLock is a best effort mutual exclusion for batch runs across processes.
type RunLock struct {
	client *redis.Client
	key    string
	token  string
	ttl    time.Duration
}

func NewRunLock(client *redis.Client, key string, token string, ttl time.Duration) *RunLock {
	return &RunLock{
		client: client,
		key:    key,
		token:  token,
		ttl:    ttl,
	}
}

// Acquire reports false when another holder already owns the lock.
func (l *RunLock) Acquire(ctx context.Context) (bool, error) {
	return l.client.SetNX(ctx, l.key, l.token, l.ttl).Result()
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Release deletes the lock only if it is still held with our token.
func (l *RunLock) Release(ctx context.Context) error {
	return releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err()
}
