package contract

import (
	"context"

	"github.com/huangsam/snapguard/schema"
	"github.com/stretchr/testify/mock"
)

// MockReactorLoader is a mock implementation of ReactorLoader for testing.
type MockReactorLoader struct {
	mock.Mock
}

var _ ReactorLoader = &MockReactorLoader{} // Compile-time check

// Load implements the ReactorLoader interface.
func (m *MockReactorLoader) Load(ctx context.Context) ([]schema.Project, error) {
	args := m.Called(ctx)
	projects, _ := args.Get(0).([]schema.Project)
	return projects, args.Error(1)
}
