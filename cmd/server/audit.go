package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	_ "github.com/lib/pq"

	"prognosis/internal/audit"
	"prognosis/internal/platform/config"
)

const auditQueueSize = 512

// buildAuditor fans events out to memory plus whichever durable sinks are
// configured. Durable sinks sit behind a worker queue so a slow database or
// broker never holds up a request. The returned func drains the queues and
// releases connections.
func buildAuditor(ctx context.Context, cfg config.AuditConfig, log *slog.Logger) (*audit.Fanout, func(), error) {
	sinks := []audit.Store{audit.NewMemoryStore()}
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var durable []audit.Store
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open audit database: %w", err)
		}
		closers = append(closers, func() { _ = db.Close() })
		if err := db.PingContext(ctx); err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("ping audit database: %w", err)
		}
		store := audit.NewPostgresStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			closeAll()
			return nil, nil, err
		}
		durable = append(durable, store)
		log.Info("audit sink: postgres")
	}

	if len(cfg.KafkaBrokers) > 0 {
		pub, err := audit.NewKafkaPublisher(ctx, cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, pub.Close)
		durable = append(durable, pub)
		log.Info("audit sink: kafka", "topic", pub.Topic())
	}

	workerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	var wg sync.WaitGroup
	for _, store := range durable {
		w := audit.NewWorker(store, auditQueueSize, log)
		sinks = append(sinks, w)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = w.Run(workerCtx)
		}()
	}
	// Workers must flush before their sinks close.
	closers = append(closers, func() {
		cancel()
		wg.Wait()
	})

	return audit.NewFanout(log, sinks), closeAll, nil
}
