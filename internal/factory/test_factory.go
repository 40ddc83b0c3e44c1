package factory

import (
	"context"
	"time"

	"github.com/duelarena/server/internal/catalog"
	"github.com/duelarena/server/internal/coordinator"
	"github.com/duelarena/server/internal/dependencies/mocks"
	"github.com/duelarena/server/internal/storage/memory"
	"github.com/duelarena/server/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, coordinator.DefaultConfig(), testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// LoadDefaultCatalog loads the built-in character roster
func (t *TestApp) LoadDefaultCatalog() error {
	return t.Catalog.Load(context.Background(), catalog.NewStaticSource())
}
