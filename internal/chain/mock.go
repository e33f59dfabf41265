package chain

import "context"

// MockClient permite tests sin indexador real.
type MockClient struct {
	Owner    bool
	OwnerErr error
	Metadata TokenMetadata
	MetaErr  error
	SigValid bool
	SigErr   error
}

func (m *MockClient) IsOwner(ctx context.Context, wallet, contractAddress, tokenID string) (bool, error) {
	return m.Owner, m.OwnerErr
}

func (m *MockClient) GetTokenMetadata(ctx context.Context, contractAddress, tokenID string) (TokenMetadata, error) {
	return m.Metadata, m.MetaErr
}

func (m *MockClient) VerifySignature(ctx context.Context, wallet, message, signature string) (bool, error) {
	return m.SigValid, m.SigErr
}
