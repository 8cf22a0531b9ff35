package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/travigo/segmenter/pkg/api/routes"
	"github.com/travigo/segmenter/pkg/database"
	"github.com/travigo/segmenter/pkg/redis_client"
)

type Store interface {
	routes.RouteStore
	routes.Pinger
}

// NewApp builds the web API. A nil redisClient disables response caching.
func NewApp(db Store, redisClient *redis.Client) *fiber.App {
	webApp := fiber.New()
	webApp.Use(NewLogger())

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)
	group.Get("health", routes.HealthCheck(db))

	routesHandler := &routes.RoutesHandler{Store: db}
	if redisClient != nil {
		routesHandler.StopsCache = redis_client.NewStopsCache(redisClient)
	}
	routesHandler.Router(group.Group("/routes"))

	return webApp
}

var _ Store = (*database.DB)(nil)

func SetupServer(listen string, db Store, redisClient *redis.Client) error {
	return NewApp(db, redisClient).Listen(listen)
}
