package mocks

import (
	"github.com/shshouse/MikuModManager/internal/ports"
)

// MockDiscovery implements ports.Discovery for testing.
type MockDiscovery struct {
	// Results maps product identifiers to candidate paths
	Results map[string][]string
	// Err, if set, is returned by every call
	Err error
	// Calls records the products asked for
	Calls []string
}

// NewMockDiscovery creates a new mock discovery service.
func NewMockDiscovery() *MockDiscovery {
	return &MockDiscovery{Results: make(map[string][]string)}
}

// Candidates returns the configured results for product.
func (m *MockDiscovery) Candidates(product string) ([]string, error) {
	m.Calls = append(m.Calls, product)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Results[product], nil
}

// MockOpener implements ports.Opener for testing.
type MockOpener struct {
	Opened []string
	Err    error
}

// Open records target.
func (m *MockOpener) Open(target string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Opened = append(m.Opened, target)
	return nil
}

// LaunchCall records parameters of a Launch call.
type LaunchCall struct {
	Executable string
	WorkDir    string
	Args       string
}

// MockLauncher implements ports.Launcher for testing.
type MockLauncher struct {
	Calls []LaunchCall
	Err   error
}

// Launch records the call.
func (m *MockLauncher) Launch(executable, workDir, args string) error {
	m.Calls = append(m.Calls, LaunchCall{Executable: executable, WorkDir: workDir, Args: args})
	return m.Err
}

// Compile-time checks.
var (
	_ ports.Discovery = (*MockDiscovery)(nil)
	_ ports.Opener    = (*MockOpener)(nil)
	_ ports.Launcher  = (*MockLauncher)(nil)
)
