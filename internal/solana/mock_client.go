package solana

import (
	"context"
	"fmt"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// MockClient is a mock implementation of ClientInterface for testing
type MockClient struct {
	// Health status
	healthStatus bool

	// Vote account methods
	getVoteAccounts func(ctx context.Context) (*rpc.GetVoteAccountsResult, error)

	// Account methods
	getAccount func(ctx context.Context, address solanago.PublicKey) (solanago.PublicKey, []byte, error)

	// Transaction methods
	sendAndConfirm     func(ctx context.Context, params SendParams) (solanago.Signature, error)
	getTransactionLogs func(ctx context.Context, signature solanago.Signature) ([]string, error)

	// SentParams records every SendAndConfirm call
	SentParams []SendParams
	// VoteAccountCalls counts GetVoteAccounts calls
	VoteAccountCalls int
}

// NewMockClient creates a new mock client with default behaviors
func NewMockClient() *MockClient {
	return &MockClient{
		healthStatus: true,
	}
}

// WithHealthStatus sets the health status
func (m *MockClient) WithHealthStatus(healthy bool) *MockClient {
	m.healthStatus = healthy
	return m
}

// WithGetVoteAccounts sets a custom GetVoteAccounts function
func (m *MockClient) WithGetVoteAccounts(fn func(ctx context.Context) (*rpc.GetVoteAccountsResult, error)) *MockClient {
	m.getVoteAccounts = fn
	return m
}

// WithVoteAccounts configures the mock to return a fixed vote account snapshot
func (m *MockClient) WithVoteAccounts(current, delinquent []rpc.VoteAccountsResult) *MockClient {
	m.getVoteAccounts = func(ctx context.Context) (*rpc.GetVoteAccountsResult, error) {
		return &rpc.GetVoteAccountsResult{
			Current:    current,
			Delinquent: delinquent,
		}, nil
	}
	return m
}

// WithGetAccount sets a custom GetAccount function
func (m *MockClient) WithGetAccount(fn func(ctx context.Context, address solanago.PublicKey) (solanago.PublicKey, []byte, error)) *MockClient {
	m.getAccount = fn
	return m
}

// WithSendAndConfirm sets a custom SendAndConfirm function
func (m *MockClient) WithSendAndConfirm(fn func(ctx context.Context, params SendParams) (solanago.Signature, error)) *MockClient {
	m.sendAndConfirm = fn
	return m
}

// WithGetTransactionLogs sets a custom GetTransactionLogs function
func (m *MockClient) WithGetTransactionLogs(fn func(ctx context.Context, signature solanago.Signature) ([]string, error)) *MockClient {
	m.getTransactionLogs = fn
	return m
}

// GetVoteAccounts implements ClientInterface.GetVoteAccounts
func (m *MockClient) GetVoteAccounts(ctx context.Context) (*rpc.GetVoteAccountsResult, error) {
	m.VoteAccountCalls++
	if m.getVoteAccounts != nil {
		return m.getVoteAccounts(ctx)
	}
	return &rpc.GetVoteAccountsResult{}, nil
}

// GetAccount implements ClientInterface.GetAccount
func (m *MockClient) GetAccount(ctx context.Context, address solanago.PublicKey) (solanago.PublicKey, []byte, error) {
	if m.getAccount != nil {
		return m.getAccount(ctx, address)
	}
	return solanago.PublicKey{}, nil, fmt.Errorf("%w: %s", ErrAccountNotFound, address)
}

// SendAndConfirm implements ClientInterface.SendAndConfirm
func (m *MockClient) SendAndConfirm(ctx context.Context, params SendParams) (solanago.Signature, error) {
	m.SentParams = append(m.SentParams, params)
	if m.sendAndConfirm != nil {
		return m.sendAndConfirm(ctx, params)
	}
	return solanago.Signature{}, nil
}

// GetTransactionLogs implements ClientInterface.GetTransactionLogs
func (m *MockClient) GetTransactionLogs(ctx context.Context, signature solanago.Signature) ([]string, error) {
	if m.getTransactionLogs != nil {
		return m.getTransactionLogs(ctx, signature)
	}
	return nil, nil
}

// IsHealthy implements ClientInterface.IsHealthy
func (m *MockClient) IsHealthy(ctx context.Context) bool {
	return m.healthStatus
}
