package mailservice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/exp/rand"

	"github.com/sushihentaime/haerin/internal/common"
)

const (
	maxRetries = 5
	baseDelay  = 500 * time.Millisecond
)

// NewMailService returns a service sending welcome emails; baseURL is linked from the message body.
func NewMailService(mb common.MessageConsumer, cfg Config, baseURL string, logger MailLogger) *MailService {
	ctx, cancel := context.WithCancel(context.Background())
	return &MailService{
		mb:        mb,
		m:         NewMailer(cfg, NewTemplate()),
		logger:    logger,
		baseURL:   baseURL,
		baseDelay: baseDelay,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// SendWelcomeEmail consumes user.created events until Close is called.
func (s *MailService) SendWelcomeEmail() {
	msgs, err := s.mb.Consume(common.UserCreatedKey, common.UserExchange, common.UserCreatedQueue)
	if err != nil {
		s.logger.Error("could not consume message", slog.String("error", err.Error()))
		return
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				if err := s.handleUserCreated(msg.Body); err != nil {
					s.logger.Error("could not send welcome email", slog.String("error", err.Error()))
				}

				if err := msg.Ack(false); err != nil {
					s.logger.Error("could not ack message", slog.String("error", err.Error()))
				}

			case <-s.ctx.Done():
				s.logger.Info("stopping SendWelcomeEmail due to context cancellation")
				return
			}
		}
	}()
}

func (s *MailService) handleUserCreated(body []byte) error {
	var event common.UserCreatedEvent
	err := json.Unmarshal(body, &event)
	if err != nil {
		return fmt.Errorf("could not unmarshal message: %w", err)
	}

	payload := welcomeData{
		Name:    event.Name,
		BaseURL: s.baseURL,
	}

	// using exponential backoff with jitter
	for attempt := 0; attempt < maxRetries; attempt++ {
		err = s.m.send(event.Email, payload, welcomeTemplate)
		if err == nil {
			s.logger.Info("welcome email sent", slog.String("email", event.Email))
			return nil
		}

		delay := time.Duration(rand.Int63n(int64(s.baseDelay) << uint(attempt)))
		s.logger.Info("delaying welcome email", slog.String("email", event.Email), slog.Int("attempt", attempt), slog.Duration("delay", delay))

		select {
		case <-time.After(delay):
		case <-s.ctx.Done():
			return s.ctx.Err()
		}
	}

	return fmt.Errorf("giving up on %s after %d attempts: %w", event.Email, maxRetries, err)
}

func (s *MailService) Close() {
	s.cancel()
}
