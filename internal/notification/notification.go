package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/profacthq/profact-api/internal/notification/templates"
)

// Mailer delivers a rendered email. Sends are synchronous: signup and password
// reset must not commit state changes when the email could not be delivered.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Service renders a template scenario and delivers it over email.
type Service interface {
	SendScenario(ctx context.Context, to, scenarioID string, data any) error
}

type service struct {
	log    *slog.Logger
	mailer Mailer
	engine *templates.Engine
}

// NewService creates a notification service backed by the given mailer.
func NewService(log *slog.Logger, mailer Mailer, engine *templates.Engine) Service {
	return &service{log: log, mailer: mailer, engine: engine}
}

func (s *service) SendScenario(ctx context.Context, to, scenarioID string, data any) error {
	rendered, err := s.engine.RenderAny(ctx, scenarioID, data)
	if err != nil {
		return fmt.Errorf("render %s: %w", scenarioID, err)
	}
	if err := s.mailer.Send(ctx, to, rendered.Subject, rendered.EmailHTML); err != nil {
		return fmt.Errorf("send %s: %w", scenarioID, err)
	}
	s.log.Info("email dispatched", "scenario", scenarioID, "to", to)
	return nil
}

// SendTemplate renders and sends a typed scenario, enforcing at compile time
// that the data matches the template handle.
func SendTemplate[T any](ctx context.Context, svc Service, h templates.Handle[T], to string, data T) error {
	return svc.SendScenario(ctx, to, h.ID(), data)
}
