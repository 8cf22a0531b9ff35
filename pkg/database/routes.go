package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/travigo/segmenter/pkg/busdata"
)

const routeColumns = `route_unique_id, name_zh, departure_zh, destination_zh, city, bus_type,
	ticket_price_description_zh, segment_buffer_zh`

const stopColumns = `stop_unique_id, route_unique_id, name_zh, seq_no, go_back, longitude, latitude,
	address, city, segment_boarding, segment_alighting`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoute(row rowScanner) (*busdata.Route, error) {
	var route busdata.Route
	err := row.Scan(
		&route.ID, &route.Name, &route.Departure, &route.Destination, &route.City, &route.BusType,
		&route.TicketPriceDescription, &route.SegmentBufferText,
	)
	if err != nil {
		return nil, err
	}

	return &route, nil
}

func (db *DB) queryRoutes(ctx context.Context, query string, args ...any) ([]*busdata.Route, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query routes: %w", err)
	}
	defer rows.Close()

	var routes []*busdata.Route
	for rows.Next() {
		route, err := scanRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan route: %w", err)
		}
		routes = append(routes, route)
	}

	return routes, rows.Err()
}

// ListRoutes returns every route ordered by id.
func (db *DB) ListRoutes(ctx context.Context) ([]*busdata.Route, error) {
	return db.queryRoutes(ctx, "SELECT "+routeColumns+" FROM routes ORDER BY route_unique_id")
}

// ListRouteIDs returns every route id, optionally limited to one city.
func (db *DB) ListRouteIDs(ctx context.Context, city string) ([]int64, error) {
	query := "SELECT route_unique_id FROM routes"
	var args []any
	if city != "" {
		query += " WHERE city = ?"
		args = append(args, city)
	}
	query += " ORDER BY route_unique_id"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query route ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (db *DB) GetRoute(ctx context.Context, routeID int64) (*busdata.Route, error) {
	row := db.conn.QueryRowContext(ctx, "SELECT "+routeColumns+" FROM routes WHERE route_unique_id = ?", routeID)

	route, err := scanRoute(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("route %d: %w", routeID, ErrRouteNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("failed to get route %d: %w", routeID, err)
	}

	return route, nil
}

// FindRoutesByName matches routes whose display name contains name.
func (db *DB) FindRoutesByName(ctx context.Context, name string) ([]*busdata.Route, error) {
	return db.queryRoutes(ctx,
		"SELECT "+routeColumns+" FROM routes WHERE name_zh LIKE '%' || ? || '%' ORDER BY name_zh, route_unique_id",
		name,
	)
}

// GetRouteStops returns the stops of a route in full route order.
func (db *DB) GetRouteStops(ctx context.Context, routeID int64) ([]busdata.Stop, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+stopColumns+" FROM stops WHERE route_unique_id = ? ORDER BY go_back, seq_no",
		routeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query stops for route %d: %w", routeID, err)
	}
	defer rows.Close()

	var stops []busdata.Stop
	for rows.Next() {
		var stop busdata.Stop
		var longitude, latitude sql.NullFloat64
		var boarding, alighting sql.NullInt64

		err := rows.Scan(
			&stop.ID, &stop.RouteID, &stop.Name, &stop.Sequence, &stop.Direction,
			&longitude, &latitude, &stop.Address, &stop.City, &boarding, &alighting,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stop: %w", err)
		}

		if longitude.Valid && latitude.Valid {
			stop.Location = &busdata.Location{Longitude: longitude.Float64, Latitude: latitude.Float64}
		}
		stop.BoardingSegment = int(boarding.Int64)
		stop.AlightingSegment = int(alighting.Int64)

		stops = append(stops, stop)
	}

	return stops, rows.Err()
}

func (db *DB) GetFareZones(ctx context.Context, routeID int64) ([]busdata.FareZoneRecord, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT route_unique_id, direction, section_sequence,
		origin_stop_id, destination_stop_id, description, city
		FROM route_fares WHERE route_unique_id = ? ORDER BY direction, section_sequence, id`,
		routeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query fare zones for route %d: %w", routeID, err)
	}
	defer rows.Close()

	var records []busdata.FareZoneRecord
	for rows.Next() {
		var record busdata.FareZoneRecord
		err := rows.Scan(
			&record.RouteID, &record.Direction, &record.SectionSequence,
			&record.OriginStopID, &record.DestinationStopID, &record.Description, &record.City,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fare zone: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// CountRows reports the row count of each data table.
func (db *DB) CountRows(ctx context.Context) (map[string]int64, error) {
	counts := map[string]int64{}
	for _, table := range []string{"routes", "stops", "route_fares", "segment_runs"} {
		var count int64
		if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = count
	}

	return counts, nil
}
