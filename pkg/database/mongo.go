package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/segmenter/pkg/busdata"
	"github.com/travigo/segmenter/pkg/util"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultMongoDatabase = "segmenter"

const stopSegmentsCollection = "route_stop_segments"

type MongoInstance struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// StopSegmentDocument is the mirrored form of one stop's segments.
type StopSegmentDocument struct {
	RouteID   int64  `bson:"route_id"`
	StopID    int64  `bson:"stop_id"`
	Name      string `bson:"name"`
	Direction int    `bson:"go_back"`
	Sequence  int    `bson:"seq_no"`

	BoardingSegment  int `bson:"segment_boarding"`
	AlightingSegment int `bson:"segment_alighting"`

	ModificationDateTime time.Time `bson:"modification_datetime"`
}

// ConnectMongoDB connects to the result mirror. It returns nil without error
// when SEGMENTER_MONGODB_CONNECTION is not set.
func ConnectMongoDB(ctx context.Context) (*MongoInstance, error) {
	env := util.GetEnvironmentVariables()

	connectionString := env["SEGMENTER_MONGODB_CONNECTION"]
	if connectionString == "" {
		log.Info().Msg("Skipping MongoDB mirror setup")
		return nil, nil
	}

	dbName := defaultMongoDatabase
	if env["SEGMENTER_MONGODB_DATABASE"] != "" {
		dbName = env["SEGMENTER_MONGODB_DATABASE"]
	}

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(connectionString))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	instance := &MongoInstance{
		Client:   client,
		Database: client.Database(dbName),
	}
	instance.createIndexes(ctx)

	log.Info().Str("database", dbName).Msg("Connected to MongoDB mirror")

	return instance, nil
}

func (m *MongoInstance) GetCollection(collectionName string) *mongo.Collection {
	return m.Database.Collection(collectionName)
}

func (m *MongoInstance) Disconnect(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

func (m *MongoInstance) createIndexes(ctx context.Context) {
	segmentsIndex := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "route_id", Value: 1}, {Key: "go_back", Value: 1}, {Key: "seq_no", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "stop_id", Value: 1}},
		},
	}

	opts := options.CreateIndexes()
	_, err := m.GetCollection(stopSegmentsCollection).Indexes().CreateMany(ctx, segmentsIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

// WriteSegments upserts the batch into the mirror collection with one bulk write.
func (m *MongoInstance) WriteSegments(ctx context.Context, batch []RouteSegments) error {
	var operations []mongo.WriteModel
	now := time.Now()

	for _, route := range batch {
		for _, stop := range route.Stops {
			operations = append(operations, segmentUpsert(route.RouteID, &stop, now))
		}
	}

	if len(operations) == 0 {
		return nil
	}

	_, err := m.GetCollection(stopSegmentsCollection).BulkWrite(ctx, operations, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return fmt.Errorf("failed to mirror segments: %w", err)
	}

	return nil
}

func segmentUpsert(routeID int64, stop *busdata.Stop, now time.Time) mongo.WriteModel {
	document := StopSegmentDocument{
		RouteID:              routeID,
		StopID:               stop.ID,
		Name:                 stop.Name,
		Direction:            int(stop.Direction),
		Sequence:             stop.Sequence,
		BoardingSegment:      stop.BoardingSegment,
		AlightingSegment:     stop.AlightingSegment,
		ModificationDateTime: now,
	}

	return mongo.NewReplaceOneModel().
		SetFilter(bson.M{"route_id": routeID, "go_back": document.Direction, "seq_no": document.Sequence}).
		SetReplacement(document).
		SetUpsert(true)
}
