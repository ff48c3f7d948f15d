package postgres

import (
	"context"
	"fmt"
	"time"

	pq "github.com/lib/pq"

	"github.com/julianstephens/waterme/internal/constants"
	"github.com/julianstephens/waterme/internal/logger"
	"github.com/julianstephens/waterme/internal/storage"
)

const (
	listenerMinReconnect = 10 * time.Second
	listenerMaxReconnect = time.Minute
	listenerPingInterval = 90 * time.Second
)

// entityForTable maps the table name carried in a NOTIFY payload.
func entityForTable(table string) storage.Entity {
	switch table {
	case "vessels":
		return storage.EntityVessels
	case "reminders", "perform_events":
		return storage.EntityReminders
	case "settings":
		return storage.EntitySettings
	}
	return storage.EntityUnknown
}

// Watch streams changes published by the change triggers over LISTEN/NOTIFY.
// A reconnect is reported as an unknown change since notifications may have
// been missed while the connection was down.
func (s *Store) Watch(ctx context.Context) (<-chan storage.Change, error) {
	listener := pq.NewListener(s.connStr, listenerMinReconnect, listenerMaxReconnect,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				logger.Warn("postgres listener event", "event", ev, "error", err)
			}
		})
	if err := listener.Listen(constants.NotificationChannel); err != nil {
		listener.Close()
		return nil, fmt.Errorf("postgres: listen %s: %w", constants.NotificationChannel, err)
	}

	events := make(chan storage.Change, 16)
	go func() {
		defer close(events)
		defer listener.Close()

		ping := time.NewTicker(listenerPingInterval)
		defer ping.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case n, ok := <-listener.Notify:
				if !ok {
					return
				}
				change := storage.Change{Entity: storage.EntityUnknown}
				if n != nil {
					change.Entity = entityForTable(n.Extra)
				}
				select {
				case events <- change:
				case <-ctx.Done():
					return
				}
			case <-ping.C:
				go func() {
					if err := listener.Ping(); err != nil {
						logger.Warn("postgres listener ping failed", "error", err)
					}
				}()
			}
		}
	}()
	return events, nil
}
