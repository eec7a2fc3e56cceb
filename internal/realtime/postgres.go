package realtime

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

const relistenDelay = 2 * time.Second

// PostgresBroker uses LISTEN/NOTIFY on the application database, for
// deployments without Redis.
type PostgresBroker struct {
	pool *pgxpool.Pool
	log  logrus.FieldLogger
}

func NewPostgresBroker(pool *pgxpool.Pool, log logrus.FieldLogger) *PostgresBroker {
	return &PostgresBroker{pool: pool, log: log.WithField("component", "realtime.postgres")}
}

func (b *PostgresBroker) Publish(ctx context.Context, appointmentID uint) error {
	payload, err := encodeChange(newChange(appointmentID))
	if err != nil {
		return err
	}
	if _, err := b.pool.Exec(ctx, "SELECT pg_notify($1, $2)", ChangeTopic, payload); err != nil {
		return fmt.Errorf("notify change: %w", err)
	}
	return nil
}

func (b *PostgresBroker) Listen(ctx context.Context, deliver func(Change), resync func()) error {
	conn, err := b.listen(ctx)
	if err != nil {
		return err
	}

	go func() {
		for {
			err := b.drain(ctx, conn, deliver)
			conn.Release()
			if ctx.Err() != nil {
				return
			}
			b.log.WithError(err).Warn("change listener lost, reconnecting")

			var ok bool
			if conn, ok = b.relisten(ctx); !ok {
				return
			}

			// Notifications sent while nobody listened are gone for good.
			b.log.Info("change listener restored, resyncing")
			resync()
		}
	}()

	return nil
}

// relisten retries until LISTEN succeeds or ctx is done.
func (b *PostgresBroker) relisten(ctx context.Context) (*pgxpool.Conn, bool) {
	for {
		select {
		case <-ctx.Done():
			return nil, false
		case <-time.After(relistenDelay):
		}

		conn, err := b.listen(ctx)
		if err == nil {
			return conn, true
		}
		b.log.WithError(err).Warn("relisten failed")
	}
}

func (b *PostgresBroker) listen(ctx context.Context) (*pgxpool.Conn, error) {
	conn, err := b.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire listener: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+ChangeTopic); err != nil {
		conn.Release()
		return nil, fmt.Errorf("listen %s: %w", ChangeTopic, err)
	}
	return conn, nil
}

func (b *PostgresBroker) drain(ctx context.Context, conn *pgxpool.Conn, deliver func(Change)) error {
	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			// Never hand a LISTENing connection back to the pool.
			_ = conn.Conn().Close(context.Background())
			return err
		}
		ch, err := decodeChange(n.Payload)
		if err != nil {
			b.log.WithError(err).Warn("dropping malformed change")
			continue
		}
		deliver(ch)
	}
}

var _ Broker = (*PostgresBroker)(nil)
