package consumer

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/adjust/rmq/v5"
	"github.com/rs/zerolog/log"
	"github.com/travigo/segmenter/pkg/processor"
	"github.com/travigo/segmenter/pkg/redis_client"
	"github.com/travigo/segmenter/pkg/util"
)

const RecomputeQueue = "segment-recompute"

type RouteProcessor interface {
	Run(ctx context.Context, routeIDs []int64) (*processor.Summary, error)
}

// RecomputeConsumer recomputes the segments of the route ids it receives.
type RecomputeConsumer struct {
	ctx       context.Context
	processor RouteProcessor
}

func NewRecomputeConsumer(ctx context.Context, p RouteProcessor) *RecomputeConsumer {
	return &RecomputeConsumer{ctx: ctx, processor: p}
}

// parseRouteIDs returns the distinct valid route ids in payload order and
// the indexes of payloads that are not route ids.
func parseRouteIDs(payloads []string) ([]int64, []int) {
	var trimmed []string
	var invalid []int

	for i, payload := range payloads {
		payload = strings.TrimSpace(payload)
		if id, err := strconv.ParseInt(payload, 10, 64); err != nil || id <= 0 {
			invalid = append(invalid, i)
			continue
		}
		trimmed = append(trimmed, payload)
	}

	var routeIDs []int64
	for _, payload := range util.RemoveDuplicateStrings(trimmed, nil) {
		id, _ := strconv.ParseInt(payload, 10, 64)
		routeIDs = append(routeIDs, id)
	}

	return routeIDs, invalid
}

func (c *RecomputeConsumer) Consume(batch rmq.Deliveries) {
	routeIDs, invalid := parseRouteIDs(batch.Payloads())

	for _, index := range invalid {
		log.Warn().Str("payload", batch[index].Payload()).Msg("Rejecting invalid recompute request")
		if err := batch[index].Reject(); err != nil {
			log.Error().Err(err).Msg("Failed to reject delivery")
		}
	}

	valid := make(rmq.Deliveries, 0, len(batch)-len(invalid))
	for i, delivery := range batch {
		if !slices.Contains(invalid, i) {
			valid = append(valid, delivery)
		}
	}

	if len(routeIDs) == 0 {
		return
	}

	summary, err := c.processor.Run(c.ctx, routeIDs)
	if err != nil {
		log.Error().Err(err).Int("routes", len(routeIDs)).Msg("Failed to recompute segments")
		for _, err := range valid.Reject() {
			log.Error().Err(err).Msg("Failed to reject delivery")
		}
		return
	}

	log.Info().
		Int("routes", len(routeIDs)).
		Int("failed", summary.Failed).
		Msg("Recomputed segments")

	for _, err := range valid.Ack() {
		log.Error().Err(err).Msg("Failed to ack delivery")
	}
}

// Enqueue publishes route ids onto the recompute queue.
func Enqueue(routeIDs []int64) error {
	queue, err := redis_client.QueueConnection.OpenQueue(RecomputeQueue)
	if err != nil {
		return err
	}

	payloads := make([]string, len(routeIDs))
	for i, id := range routeIDs {
		payloads[i] = strconv.FormatInt(id, 10)
	}

	return queue.Publish(payloads...)
}
