package mail

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/phrazzld/cityinfo-api/internal/config"
	"github.com/phrazzld/cityinfo-api/internal/platform/logger"
)

// Mailer sends a notification message. Implementations make a single delivery
// attempt with no retry.
type Mailer interface {
	Send(ctx context.Context, subject, message string) error
}

// LocalMailer writes messages to an io.Writer instead of delivering them.
type LocalMailer struct {
	from   string
	to     string
	out    io.Writer
	logger *slog.Logger
}

// Ensure LocalMailer implements Mailer
var _ Mailer = (*LocalMailer)(nil)

// NewLocalMailer creates a LocalMailer writing to out, or to stdout when out is nil.
func NewLocalMailer(cfg config.MailConfig, out io.Writer, logger *slog.Logger) *LocalMailer {
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalMailer{
		from:   cfg.From,
		to:     cfg.To,
		out:    out,
		logger: logger.With(slog.String("component", "local_mailer")),
	}
}

// Send implements Mailer.
func (m *LocalMailer) Send(ctx context.Context, subject, message string) error {
	_, err := fmt.Fprintf(m.out,
		"Mail from %s to %s, with LocalMailer\nSubject: %s\nMessage: %s\n",
		m.from, m.to, subject, message)
	if err != nil {
		return fmt.Errorf("write mail: %w", err)
	}

	logger.FromContextOrDefault(ctx, m.logger).Debug("mail written",
		slog.String("subject", subject),
		slog.String("to", m.to))
	return nil
}
