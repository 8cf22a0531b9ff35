package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"github.com/travigo/segmenter/pkg/busdata"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// RouteSegments carries the computed segments of every stop of one route.
type RouteSegments struct {
	RouteID int64
	Stops   []busdata.Stop
}

const maxWriteElapsed = 30 * time.Second

func isBusy(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}

	code := sqliteErr.Code() & 0xff
	return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
}

// withRetry runs fn until it succeeds, returns a non busy error or the
// backoff gives up.
func withRetry(ctx context.Context, name string, fn func() error) error {
	retryBackoff := backoff.NewExponentialBackOff()
	retryBackoff.InitialInterval = 50 * time.Millisecond
	retryBackoff.MaxElapsedTime = maxWriteElapsed

	return backoff.RetryNotify(func() error {
		err := fn()
		if err != nil && !isBusy(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(retryBackoff, ctx), func(err error, wait time.Duration) {
		log.Warn().Err(err).Str("operation", name).Dur("wait", wait).Msg("Database busy, retrying")
	})
}

// WriteSegments stores the segments of a batch of routes in a single
// transaction. Every stop of a route is written together.
func (db *DB) WriteSegments(ctx context.Context, batch []RouteSegments) error {
	if len(batch) == 0 {
		return nil
	}

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	return withRetry(ctx, "write segments", func() error {
		return db.writeSegments(ctx, batch)
	})
}

func (db *DB) writeSegments(ctx context.Context, batch []RouteSegments) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE stops SET segment_boarding = ?, segment_alighting = ?
		WHERE route_unique_id = ? AND go_back = ? AND seq_no = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare segment update: %w", err)
	}
	defer stmt.Close()

	for _, route := range batch {
		for _, stop := range route.Stops {
			_, err := stmt.ExecContext(ctx,
				stop.BoardingSegment, stop.AlightingSegment, route.RouteID, int(stop.Direction), stop.Sequence,
			)
			if err != nil {
				return fmt.Errorf("failed to update stop %d of route %d: %w", stop.ID, route.RouteID, err)
			}
		}
	}

	return tx.Commit()
}

// ClearImportedData removes every route, stop and fare zone ahead of a fresh import.
func (db *DB) ClearImportedData(ctx context.Context) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"route_fares", "stops", "routes"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	return tx.Commit()
}

func (db *DB) InsertRoutes(ctx context.Context, routes []busdata.Route) error {
	if len(routes) == 0 {
		return nil
	}

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO routes (`+routeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (route_unique_id) DO UPDATE SET
			name_zh = excluded.name_zh,
			departure_zh = excluded.departure_zh,
			destination_zh = excluded.destination_zh,
			city = excluded.city,
			bus_type = excluded.bus_type,
			ticket_price_description_zh = excluded.ticket_price_description_zh,
			segment_buffer_zh = excluded.segment_buffer_zh`)
	if err != nil {
		return fmt.Errorf("failed to prepare route insert: %w", err)
	}
	defer stmt.Close()

	for _, route := range routes {
		_, err := stmt.ExecContext(ctx,
			route.ID, route.Name, route.Departure, route.Destination, route.City, route.BusType,
			route.TicketPriceDescription, route.SegmentBufferText,
		)
		if err != nil {
			return fmt.Errorf("failed to insert route %d: %w", route.ID, err)
		}
	}

	return tx.Commit()
}

func (db *DB) InsertStops(ctx context.Context, stops []busdata.Stop) error {
	if len(stops) == 0 {
		return nil
	}

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO stops (`+stopColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, NULL)`)
	if err != nil {
		return fmt.Errorf("failed to prepare stop insert: %w", err)
	}
	defer stmt.Close()

	for _, stop := range stops {
		var longitude, latitude *float64
		if stop.Location != nil {
			longitude = &stop.Location.Longitude
			latitude = &stop.Location.Latitude
		}

		_, err := stmt.ExecContext(ctx,
			stop.ID, stop.RouteID, stop.Name, stop.Sequence, int(stop.Direction),
			longitude, latitude, stop.Address, stop.City,
		)
		if err != nil {
			return fmt.Errorf("failed to insert stop %d: %w", stop.ID, err)
		}
	}

	return tx.Commit()
}

func (db *DB) InsertFareZones(ctx context.Context, records []busdata.FareZoneRecord) error {
	if len(records) == 0 {
		return nil
	}

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO route_fares (route_unique_id, direction, section_sequence,
		origin_stop_id, destination_stop_id, description, city) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare fare zone insert: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		_, err := stmt.ExecContext(ctx,
			record.RouteID, int(record.Direction), record.SectionSequence,
			record.OriginStopID, record.DestinationStopID, record.Description, record.City,
		)
		if err != nil {
			return fmt.Errorf("failed to insert fare zone for route %d: %w", record.RouteID, err)
		}
	}

	return tx.Commit()
}
