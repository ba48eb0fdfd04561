package llm

import "context"

// MockClient is a configurable oracle for tests. Set CompleteFunc to control
// behaviour; prompts and call counts are recorded for verification.
type MockClient struct {
	// CompleteFunc is called when Complete is invoked. If nil, returns an
	// empty completion and nil error.
	CompleteFunc func(ctx context.Context, prompt string, systemMessage string, opts CompleteOptions) (string, error)

	// ModelName is returned by Model. Defaults to "mock-model".
	ModelName string

	// Call tracking.
	CompleteCalls int
	Prompts       []string
}

// NewMockClient creates a mock with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{ModelName: "mock-model"}
}

// Complete implements Client.
func (m *MockClient) Complete(ctx context.Context, prompt string, systemMessage string, opts CompleteOptions) (string, error) {
	m.CompleteCalls++
	m.Prompts = append(m.Prompts, prompt)
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt, systemMessage, opts)
	}
	return "", nil
}

// Model implements Client.
func (m *MockClient) Model() string {
	if m.ModelName == "" {
		return "mock-model"
	}
	return m.ModelName
}

// Reset clears call tracking.
func (m *MockClient) Reset() {
	m.CompleteCalls = 0
	m.Prompts = nil
}

var _ Client = (*MockClient)(nil)
