package locate

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"
	"github.com/rs/zerolog/log"
)

// SerialOptions selects the serial port of an NMEA GPS receiver.
type SerialOptions struct {
	Port string
	Baud uint
}

// NMEA is a location source reading NMEA 0183 sentences from a GPS receiver.
// Only valid RMC and GGA fixes are published.
type NMEA struct {
	r      io.Reader
	closer io.Closer
	hub    *hub
}

// NewNMEA reads sentences from r. Call Run to start consuming it.
func NewNMEA(r io.Reader, maxAge time.Duration) *NMEA {
	n := &NMEA{r: r, hub: newHub(maxAge)}
	if c, ok := r.(io.Closer); ok {
		n.closer = c
	}

	return n
}

// OpenSerial opens the GPS serial port.
func OpenSerial(opts SerialOptions, maxAge time.Duration) (*NMEA, error) {
	baud := opts.Baud
	if baud == 0 {
		baud = 9600
	}

	port, err := serial.Open(serial.OpenOptions{
		PortName:              opts.Port,
		BaudRate:              baud,
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", opts.Port, err)
	}

	log.Info().
		Str("port", opts.Port).
		Uint("baud", baud).
		Msg("GPS serial port opened")

	return NewNMEA(port, maxAge), nil
}

// Run consumes sentences until the reader fails. After that every lookup
// reports the position as unavailable.
func (n *NMEA) Run() error {
	reader := bufio.NewReader(n.r)

	for {
		line, err := reader.ReadString('\n')
		if line = strings.TrimSpace(line); strings.HasPrefix(line, "$") {
			if p, ok := parseSentence(line); ok {
				n.hub.publish(p)
			}
		}

		if err != nil {
			n.hub.fail(&Error{Code: PositionUnavailable, Message: "GPS receiver disconnected"})
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read GPS: %w", err)
		}
	}
}

// CurrentPosition returns the latest fix, waiting for the next one when the
// cached fix is too old.
func (n *NMEA) CurrentPosition(ctx context.Context) (Position, error) {
	return n.hub.next(ctx)
}

// Close closes the underlying port.
func (n *NMEA) Close() error {
	if n.closer == nil {
		return nil
	}

	return n.closer.Close()
}

func parseSentence(line string) (Position, bool) {
	sentence, err := nmea.Parse(line)
	if err != nil {
		log.Trace().Err(err).Str("line", line).Msg("Skipping NMEA sentence")
		return Position{}, false
	}

	switch sentence.DataType() {
	case nmea.TypeRMC:
		m := sentence.(nmea.RMC)
		if m.Validity != nmea.ValidRMC {
			return Position{}, false
		}
		return Position{Latitude: m.Latitude, Longitude: m.Longitude}, true

	case nmea.TypeGGA:
		m := sentence.(nmea.GGA)
		if m.FixQuality == nmea.Invalid {
			return Position{}, false
		}
		return Position{Latitude: m.Latitude, Longitude: m.Longitude}, true
	}

	return Position{}, false
}
