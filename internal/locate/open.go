package locate

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Source names.
const (
	SourceBrowser = "browser"
	SourceNMEA    = "nmea"
	SourceMQTT    = "mqtt"
)

// Options select and configure a device location source.
type Options struct {
	Source string
	Serial SerialOptions
	MQTT   MQTTOptions
	MaxAge time.Duration
}

// Source is a running device location source.
type Source interface {
	CurrentPosition(ctx context.Context) (Position, error)
	Close() error
}

// Open starts the configured source. The browser source has nothing to run
// on this side and yields nil.
func Open(opts Options) (Source, error) {
	switch opts.Source {
	case SourceBrowser, "":
		return nil, nil

	case SourceNMEA:
		n, err := OpenSerial(opts.Serial, opts.MaxAge)
		if err != nil {
			return nil, err
		}
		go func() {
			if err := n.Run(); err != nil {
				log.Error().Err(err).Str("port", opts.Serial.Port).Msg("GPS reader stopped")
				return
			}
			log.Warn().Str("port", opts.Serial.Port).Msg("GPS stream ended")
		}()
		return n, nil

	case SourceMQTT:
		m, err := DialMQTT(opts.MQTT, opts.MaxAge)
		if err != nil {
			return nil, err
		}
		return m, nil

	default:
		return nil, fmt.Errorf("unknown location source %q", opts.Source)
	}
}
