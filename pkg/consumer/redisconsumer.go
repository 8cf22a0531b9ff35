package consumer

import (
	"fmt"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/zerolog/log"
	"github.com/travigo/segmenter/pkg/redis_client"
)

type RedisConsumer struct {
	QueueName string

	NumberConsumers int
	BatchSize       int

	Timeout time.Duration

	Consumer rmq.BatchConsumer
}

func (c *RedisConsumer) Setup() error {
	return c.startConsumers()
}

func (c *RedisConsumer) startConsumers() error {
	log.Info().Str("queue", c.QueueName).Msg("Starting consumers")

	queue, err := redis_client.QueueConnection.OpenQueue(c.QueueName)
	if err != nil {
		return err
	}
	if err := queue.StartConsuming(int64(c.NumberConsumers*c.BatchSize), 1*time.Second); err != nil {
		return err
	}

	for i := 0; i < c.NumberConsumers; i++ {
		if err := c.startQueueConsumer(queue, i); err != nil {
			return err
		}
	}

	return nil
}

func (c *RedisConsumer) startQueueConsumer(queue rmq.Queue, id int) error {
	log.Info().Msgf("Starting %s consumer %d", c.QueueName, id)

	_, err := queue.AddBatchConsumer(fmt.Sprintf("%s-%d", c.QueueName, id), int64(c.BatchSize), c.Timeout, c.Consumer)
	return err
}

// StatsServer serves the queue statistics page and a health check.
func (c *RedisConsumer) StatsServer(health *HealthHandler) *fiber.App {
	webApp := fiber.New(fiber.Config{DisableStartupMessage: true})

	endpoint := fmt.Sprintf("/%s/stats", c.QueueName)
	webApp.Get(endpoint, adaptor.HTTPHandler(NewStatsHandler(redis_client.QueueConnection)))
	webApp.Get("/health", adaptor.HTTPHandler(health))

	return webApp
}
