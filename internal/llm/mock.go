package llm

import "context"

// MockClient permite tests sin llamar a un LLM real. Si Responses tiene
// elementos se consumen en orden; si se agotan se repite Response.
type MockClient struct {
	Response  string
	Responses []string
	Err       error
	Requests  []CompletionRequest
}

func (m *MockClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) > 0 {
		next := m.Responses[0]
		m.Responses = m.Responses[1:]
		return next, nil
	}
	return m.Response, nil
}
