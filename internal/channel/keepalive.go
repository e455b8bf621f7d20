package channel

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// KeepAlive pings an open channel periodically so idle connections are not
// dropped by proxies. A failed ping is logged; the read loop reports the
// actual disconnect.
type KeepAlive struct {
	logger   *zerolog.Logger
	conn     Conn
	interval time.Duration

	chEnd chan bool
}

func NewKeepAlive(logger *zerolog.Logger, conn Conn, interval time.Duration) *KeepAlive {
	return &KeepAlive{
		logger:   logger,
		conn:     conn,
		interval: interval,
		chEnd:    make(chan bool, 1),
	}
}

func (k *KeepAlive) Run() {
	go k.loop()
}

func (k *KeepAlive) Destroy() {
	select {
	case k.chEnd <- true:
	default:
	}
}

func (k *KeepAlive) loop() {
	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()

	for {
		select {
		case <-k.chEnd:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), k.interval)
			err := k.conn.Ping(ctx)
			cancel()
			if err != nil {
				k.logger.Warn().Err(err).Msg("Channel ping failed")
			}
		}
	}
}
