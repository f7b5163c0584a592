// Package session implements the interactive terminal collector: a line
// based command loop over one capture session.
package session

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/woozymasta/geocollect/internal/export"
	"github.com/woozymasta/geocollect/internal/geo"
	"github.com/woozymasta/geocollect/internal/point"
	"github.com/woozymasta/geocollect/internal/render"

	"github.com/rs/zerolog/log"
)

// ErrQuit is returned by Exec for the quit command.
var ErrQuit = errors.New("quit")

const help = `Commands:
  name [text]            set the name for the next captures
  type [text]            set the type (suggested: %s)
  accessible yes|no      set the accessibility flag
  form                   show the current form values
  add                    capture the current position
  list                   show all captured points as GeoJSON features
  show N                 show point N (1-based)
  copy                   copy all points to the clipboard as GeoJSON
  export [json|yaml] [F] write all points to stdout or file F
  help                   show this help
  quit                   wait for pending captures and exit
`

// Session holds the form state and the collector of one terminal session.
type Session struct {
	out       io.Writer
	collector *point.Collector
	clipboard export.Clipboard
	pending   sync.WaitGroup
	form      point.Form
	timeout   time.Duration
	mu        sync.Mutex
}

// New returns a session printing to out.
func New(out io.Writer, collector *point.Collector, clip export.Clipboard, timeout time.Duration) *Session {
	return &Session{out: out, collector: collector, clipboard: clip, timeout: timeout}
}

// Run reads commands from in until EOF or quit.
func (s *Session) Run(ctx context.Context, in io.Reader) error {
	s.printf("%s\n", "Type 'help' for commands.")

	scanner := bufio.NewScanner(in)
	for {
		s.printf("> ")
		if !scanner.Scan() {
			break
		}

		err := s.Exec(ctx, scanner.Text())
		if errors.Is(err, ErrQuit) {
			break
		}
		if err != nil {
			s.printf("error: %v\n", err)
		}
	}

	s.Wait()
	return scanner.Err()
}

// Wait blocks until every started capture has finished.
func (s *Session) Wait() {
	s.pending.Wait()
}

// Form returns the current form values.
func (s *Session) Form() point.Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// Exec runs one command line.
func (s *Session) Exec(ctx context.Context, line string) error {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "":
		return nil
	case "name":
		s.mu.Lock()
		s.form.Name = arg
		s.mu.Unlock()
	case "type":
		s.mu.Lock()
		s.form.Type = arg
		s.mu.Unlock()
	case "accessible":
		v, err := parseBool(arg)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.form.Accessible = v
		s.mu.Unlock()
	case "form":
		f := s.Form()
		p := render.PopupFor(geo.GeoPoint{Name: f.Name, Type: f.Type, Accessible: f.Accessible})
		s.printf("Nome: %s\nTipo: %s\nAcessível: %s\n", p.Title, p.Type, p.Accessible)
	case "add":
		s.add(ctx)
	case "list":
		return s.list()
	case "show":
		return s.show(arg)
	case "copy":
		return s.copy()
	case "export":
		return s.export(arg)
	case "help", "?":
		s.printf(help, strings.Join(geo.SuggestedTypes, ", "))
	case "quit", "exit":
		return ErrQuit
	default:
		return fmt.Errorf("unknown command %q, type 'help'", cmd)
	}

	return nil
}

// add starts a capture; the result is printed when the lookup completes.
func (s *Session) add(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	done := s.collector.Capture(ctx, s.Form())

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer cancel()

		res := <-done
		if res.Err != nil {
			s.printf("\n%s\n", point.Notice(res.Err))
			return
		}
		s.printf("\ncaptured #%d: %.6f, %.6f\n", res.Index+1, res.Point.Lat, res.Point.Lng)
	}()
}

func (s *Session) list() error {
	points := s.collector.Store().Read()
	if len(points) == 0 {
		s.printf("Nenhum ponto coletado.\n")
		return nil
	}

	for i, p := range points {
		data, err := json.MarshalIndent(geo.PointFeature(p), "", "  ")
		if err != nil {
			return err
		}
		s.printf("#%d\n%s\n", i+1, data)
	}

	return nil
}

func (s *Session) show(arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("show needs a point number: %w", err)
	}

	p, ok := s.collector.Store().At(n - 1)
	if !ok {
		return fmt.Errorf("no point #%d", n)
	}

	data, err := json.MarshalIndent(geo.PointFeature(p), "", "  ")
	if err != nil {
		return err
	}
	s.printf("%s\n", data)

	return nil
}

func (s *Session) copy() error {
	points := s.collector.Store().Read()

	copied, err := export.CopyAll(points, s.clipboard)
	if err != nil {
		return err
	}
	if !copied {
		s.printf("Nenhum ponto coletado.\n")
		return nil
	}

	log.Debug().Int("points", len(points)).Msg("Points copied to clipboard")
	s.printf("copied %d points\n", len(points))

	return nil
}

func (s *Session) export(arg string) error {
	fields := strings.Fields(arg)

	format := export.FormatJSON
	if len(fields) > 0 {
		f, err := export.ParseFormat(fields[0])
		if err != nil {
			return err
		}
		format = f
	}

	points := s.collector.Store().Read()
	if len(points) == 0 {
		s.printf("Nenhum ponto coletado.\n")
		return nil
	}

	if len(fields) < 2 {
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := export.Encode(s.out, geo.Collection(points), format); err != nil {
			return err
		}
		_, err := fmt.Fprintln(s.out)
		return err
	}

	path := fields[1]
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	// We care about write errors on close
	if err := export.Encode(f, geo.Collection(points), format); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	s.printf("wrote %d points to %s\n", len(points), path)
	return nil
}

func (s *Session) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintf(s.out, format, args...)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "y", "true", "1", "sim", "s":
		return true, nil
	case "no", "n", "false", "0", "não", "nao":
		return false, nil
	default:
		return false, fmt.Errorf("accessible expects yes or no, got %q", s)
	}
}
