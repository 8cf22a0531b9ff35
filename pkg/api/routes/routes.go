package routes

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/rs/zerolog/log"
	"github.com/travigo/segmenter/pkg/busdata"
	"github.com/travigo/segmenter/pkg/database"
	"github.com/travigo/segmenter/pkg/redis_client"
)

type RouteStore interface {
	ListRoutes(ctx context.Context) ([]*busdata.Route, error)
	FindRoutesByName(ctx context.Context, name string) ([]*busdata.Route, error)
	GetRoute(ctx context.Context, routeID int64) (*busdata.Route, error)
	GetRouteStops(ctx context.Context, routeID int64) ([]busdata.Stop, error)
}

type RoutesHandler struct {
	Store RouteStore

	// StopsCache is optional
	StopsCache *cache.Cache[string]
}

func (h *RoutesHandler) Router(router fiber.Router) {
	router.Get("/", h.listRoutes)
	router.Get("/:id", h.getRoute)
	router.Get("/:id/stops", h.getRouteStops)
}

func responseGroups(c *fiber.Ctx) []string {
	if c.QueryBool("detailed", false) {
		return []string{"basic", "detailed"}
	}
	return []string{"basic"}
}

func routeID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}

func (h *RoutesHandler) listRoutes(c *fiber.Ctx) error {
	var routes []*busdata.Route
	var err error

	if name := c.Query("name"); name != "" {
		routes, err = h.Store.FindRoutesByName(c.Context(), name)
	} else {
		routes, err = h.Store.ListRoutes(c.Context())
	}
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	routesReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, routes)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce Routes",
		})
	}

	return c.JSON(routesReduced)
}

func (h *RoutesHandler) getRoute(c *fiber.Ctx) error {
	id, err := routeID(c)
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Route ID should be an integer",
		})
	}

	route, err := h.Store.GetRoute(c.Context(), id)
	if errors.Is(err, database.ErrRouteNotFound) {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Could not find Route matching Route ID",
		})
	} else if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	routeReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic", "detailed"},
	}, route)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce Route",
		})
	}

	return c.JSON(routeReduced)
}

func (h *RoutesHandler) getRouteStops(c *fiber.Ctx) error {
	id, err := routeID(c)
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Route ID should be an integer",
		})
	}

	groups := responseGroups(c)
	cacheKey := redis_client.StopsCacheKey(id, c.QueryBool("detailed", false))

	if h.StopsCache != nil {
		if cached, err := h.StopsCache.Get(c.Context(), cacheKey); err == nil {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.SendString(cached)
		}
	}

	if _, err := h.Store.GetRoute(c.Context(), id); errors.Is(err, database.ErrRouteNotFound) {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Could not find Route matching Route ID",
		})
	} else if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	stops, err := h.Store.GetRouteStops(c.Context(), id)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	stopsReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: groups,
	}, stops)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce Stops",
		})
	}

	stopsJSON, err := json.Marshal(stopsReduced)
	if err != nil {
		return err
	}

	if h.StopsCache != nil {
		if err := h.StopsCache.Set(c.Context(), cacheKey, string(stopsJSON)); err != nil {
			log.Error().Err(err).Int64("route", id).Msg("Failed to cache route stops")
		}
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(stopsJSON)
}
