// Command order-import replays order-created events from an NDJSON dump
// straight into the order store, bypassing the broker. Useful for backfills
// and for seeding development environments.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/orderms/internal/domain/order"
	"github.com/xenking/orderms/internal/repository"
)

func main() {
	var (
		file        string
		databaseURL string
		workers     int
	)

	flag.StringVar(&file, "file", "", "NDJSON file of order-created events (.gz supported)")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.IntVar(&workers, "workers", 4, "concurrent insert workers")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if file == "" || databaseURL == "" {
		slog.Error("both --file and a database URL are required")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, file, databaseURL, workers); err != nil {
		slog.Error("order import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, file, databaseURL string, workers int) error {
	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}
	repo := repository.NewOrderRepository(pool)

	f, err := os.Open(file)
	if err != nil {
		return errors.Wrapf(err, "open %s", file)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(file, ".gz") {
		zr, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrapf(err, "open gzip stream %s", file)
		}
		defer zr.Close()
		r = zr
	}

	var imported, invalid atomic.Int64
	lines := make(chan []byte, workers*4)

	g, gctx := errgroup.WithContext(ctx)
	for range workers {
		g.Go(func() error {
			for line := range lines {
				var e order.OrderCreatedEvent
				if err := json.Unmarshal(line, &e); err != nil {
					slog.Warn("skipping undecodable line", slog.String("error", err.Error()))
					invalid.Add(1)
					continue
				}

				o, err := order.OrderFromEvent(e)
				if err != nil {
					slog.Warn("skipping invalid event", slog.String("error", err.Error()))
					invalid.Add(1)
					continue
				}

				if err := repo.Insert(gctx, o); err != nil {
					return errors.Wrapf(err, "insert order %d", o.OrderID)
				}
				imported.Add(1)
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(lines)

		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 1<<20), 1<<20)
		for sc.Scan() {
			if len(sc.Bytes()) == 0 {
				continue
			}
			// The scanner reuses its buffer between lines.
			line := append([]byte(nil), sc.Bytes()...)
			select {
			case <-gctx.Done():
				return gctx.Err()
			case lines <- line:
			}
		}
		return sc.Err()
	})

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("order import completed",
		slog.Int64("imported", imported.Load()),
		slog.Int64("invalid", invalid.Load()),
	)
	return nil
}
