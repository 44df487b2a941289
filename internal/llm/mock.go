package llm

import "context"

// MockClient permite tests sin llamar a un LLM real.
type MockClient struct {
	Response   string
	Err        error
	LastSystem string
	LastPrompt string
	Calls      int
}

func (m *MockClient) Generate(_ context.Context, system, prompt string, _ int) (string, error) {
	m.Calls++
	m.LastSystem = system
	m.LastPrompt = prompt
	return m.Response, m.Err
}
