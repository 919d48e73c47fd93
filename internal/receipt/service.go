package receipt

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/reactbank/reactbank/internal/id"
	"github.com/reactbank/reactbank/internal/receiptlog"
)

// User-facing outcome messages.
const (
	SavedMessage       = "Receipt saved to %s"
	SaveFailedMessage  = "Failed to save receipt. Please try again."
	ShareFailedMessage = "Failed to share receipt. Please try again."
)

// ErrUnknownFormat is returned for a format with no registered renderer.
var ErrUnknownFormat = errors.New("unknown receipt format")

// Config configures a Service.
type Config struct {
	Dir      string // where Save writes receipt files
	LogRoot  string // receipt log goes to <LogRoot>/logs/receipt-log.csv
	Format   string // default format
	Registry *Registry
	Logger   *slog.Logger
	Now      func() time.Time
}

// Service saves and shares rendered receipts and records each in the
// receipt log.
type Service struct {
	dir      string
	logRoot  string
	format   string
	registry *Registry
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a Service.
func NewService(cfg Config) *Service {
	s := &Service{
		dir:      cfg.Dir,
		logRoot:  cfg.LogRoot,
		format:   cfg.Format,
		registry: cfg.Registry,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}
	if s.format == "" {
		s.format = "text"
	}
	if s.registry == nil {
		s.registry = DefaultRegistry()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Renderer returns the renderer for format, or for the default format when
// format is empty.
func (s *Service) Renderer(format string) (Renderer, error) {
	if format == "" {
		format = s.format
	}
	rd := s.registry.Get(format)
	if rd == nil {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownFormat, format, s.registry.Formats())
	}
	return rd, nil
}

// Save renders r into the receipts directory and returns the file path.
func (s *Service) Save(r Receipt, format string) (string, error) {
	rd, err := s.Renderer(format)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating receipts dir: %w", err)
	}

	path := filepath.Join(s.dir, id.FormatReceiptFile(r.RefID, s.now(), rd.Ext()))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating receipt file: %w", err)
	}
	if err := rd.Render(f, r); err != nil {
		f.Close()
		return "", fmt.Errorf("rendering receipt: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing receipt file: %w", err)
	}

	if err := s.record(receiptlog.ActionSave, r, rd, path); err != nil {
		return path, err
	}
	s.logger.Info("receipt saved", slog.String("ref_id", r.RefID), slog.String("path", path))
	return path, nil
}

// Share renders r to w. target names where it went, for the log.
func (s *Service) Share(w io.Writer, r Receipt, format, target string) error {
	rd, err := s.Renderer(format)
	if err != nil {
		return err
	}
	if err := rd.Render(w, r); err != nil {
		return fmt.Errorf("rendering receipt: %w", err)
	}
	if target == "" {
		target = "-"
	}
	if err := s.record(receiptlog.ActionShare, r, rd, target); err != nil {
		return err
	}
	s.logger.Info("receipt shared", slog.String("ref_id", r.RefID), slog.String("target", target))
	return nil
}

func (s *Service) record(action receiptlog.Action, r Receipt, rd Renderer, dest string) error {
	err := receiptlog.Append(s.logRoot, []receiptlog.Entry{{
		Timestamp:     s.now(),
		Action:        action,
		RefID:         r.RefID,
		ReceiptNumber: r.Number,
		Currency:      r.Currency,
		Format:        rd.Format(),
		Destination:   dest,
	}})
	if err != nil {
		return fmt.Errorf("recording receipt %s: %w", action, err)
	}
	return nil
}
