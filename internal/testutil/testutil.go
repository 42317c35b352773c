// Package testutil holds small helpers shared by package tests.
package testutil

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"
)

// Logger returns a logger that discards everything, keeping test output clean.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockNotifier implements notification.Service for tests.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendScenario(ctx context.Context, to, scenarioID string, data any) error {
	args := m.Called(ctx, to, scenarioID, data)
	return args.Error(0)
}
