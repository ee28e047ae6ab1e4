package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/phrazzld/cityinfo-api/internal/config"
	"github.com/phrazzld/cityinfo-api/internal/platform/logger"
)

// Message is the JSON payload published for each mail.
type Message struct {
	From    string    `json:"from"`
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	SentAt  time.Time `json:"sent_at"`
}

// Publisher is the part of *amqp.Channel used by CloudMailer.
type Publisher interface {
	PublishWithContext(
		ctx context.Context,
		exchange, key string,
		mandatory, immediate bool,
		msg amqp.Publishing,
	) error
}

// CloudMailer publishes messages to a durable RabbitMQ queue on the default
// exchange. Messages are marked persistent.
type CloudMailer struct {
	publisher Publisher
	queue     string
	from      string
	to        string
	logger    *slog.Logger
	now       func() time.Time
	closers   []func() error
}

// Ensure CloudMailer implements Mailer
var _ Mailer = (*CloudMailer)(nil)

// NewCloudMailer creates a CloudMailer publishing through p. The queue must
// already exist; DialCloudMailer declares it.
func NewCloudMailer(p Publisher, cfg config.MailConfig, logger *slog.Logger) *CloudMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &CloudMailer{
		publisher: p,
		queue:     cfg.Queue,
		from:      cfg.From,
		to:        cfg.To,
		logger:    logger.With(slog.String("component", "cloud_mailer")),
		now:       time.Now,
	}
}

// DialCloudMailer connects to the broker at cfg.AMQPURL, declares cfg.Queue
// and returns a mailer owning the connection. Call Close when done.
func DialCloudMailer(cfg config.MailConfig, logger *slog.Logger) (*CloudMailer, error) {
	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		return nil, fmt.Errorf("dial amqp broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}

	if _, err := ch.QueueDeclare(
		cfg.Queue, // name
		true,      // durable
		false,     // autoDelete
		false,     // exclusive
		false,     // noWait
		nil,       // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %q: %w", cfg.Queue, err)
	}

	m := NewCloudMailer(ch, cfg, logger)
	m.closers = []func() error{ch.Close, conn.Close}
	return m, nil
}

// Send implements Mailer.
func (m *CloudMailer) Send(ctx context.Context, subject, message string) error {
	log := logger.FromContextOrDefault(ctx, m.logger)

	body, err := json.Marshal(Message{
		From:    m.from,
		To:      m.to,
		Subject: subject,
		Body:    message,
		SentAt:  m.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal mail: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    m.now().UTC(),
		Body:         body,
	}

	if err := m.publisher.PublishWithContext(ctx,
		"",      // default exchange
		m.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		pub,
	); err != nil {
		log.Error("failed to publish mail",
			slog.String("queue", m.queue),
			slog.String("error", err.Error()))
		return fmt.Errorf("publish mail: %w", err)
	}

	log.Debug("mail published", slog.String("queue", m.queue), slog.String("subject", subject))
	return nil
}

// Close releases the broker channel and connection opened by DialCloudMailer.
func (m *CloudMailer) Close() error {
	var errs []error
	for _, c := range m.closers {
		if err := c(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
	}
	m.closers = nil
	return errors.Join(errs...)
}
