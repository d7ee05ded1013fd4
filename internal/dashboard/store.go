package dashboard

import (
	"bytes"
	"fmt"
	"sync"

	solanago "github.com/gagliardetto/solana-go"
)

// AccountStore is the account storage the program runs against. Implementations must make Create and
// Update atomic per account: a failed update leaves the stored bytes untouched
type AccountStore interface {
	// Create stores a new account, failing with ErrAlreadyInitialized when the address is in use
	Create(address, owner solanago.PublicKey, data []byte) error
	// Update runs fn against the current account bytes and stores what it returns
	Update(address solanago.PublicKey, fn func(owner solanago.PublicKey, data []byte) ([]byte, error)) error
	// Get returns a copy of the account owner and bytes
	Get(address solanago.PublicKey) (owner solanago.PublicKey, data []byte, err error)
}

type storedAccount struct {
	mu    sync.Mutex
	owner solanago.PublicKey
	data  []byte
}

// MemoryStore is an in-process AccountStore that serializes writers per account
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[solanago.PublicKey]*storedAccount
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[solanago.PublicKey]*storedAccount),
	}
}

// Create implements AccountStore.Create
func (s *MemoryStore) Create(address, owner solanago.PublicKey, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[address]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyInitialized, address)
	}

	s.accounts[address] = &storedAccount{
		owner: owner,
		data:  bytes.Clone(data),
	}
	return nil
}

// Update implements AccountStore.Update
func (s *MemoryStore) Update(address solanago.PublicKey, fn func(owner solanago.PublicKey, data []byte) ([]byte, error)) error {
	account, err := s.lookup(address)
	if err != nil {
		return err
	}

	account.mu.Lock()
	defer account.mu.Unlock()

	updated, err := fn(account.owner, bytes.Clone(account.data))
	if err != nil {
		return err
	}
	account.data = bytes.Clone(updated)
	return nil
}

// Get implements AccountStore.Get
func (s *MemoryStore) Get(address solanago.PublicKey) (solanago.PublicKey, []byte, error) {
	account, err := s.lookup(address)
	if err != nil {
		return solanago.PublicKey{}, nil, err
	}

	account.mu.Lock()
	defer account.mu.Unlock()
	return account.owner, bytes.Clone(account.data), nil
}

func (s *MemoryStore) lookup(address solanago.PublicKey) (*storedAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[address]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, address)
	}
	return account, nil
}
