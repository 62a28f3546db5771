package admission

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownAccount means a trade close referenced an account with no ledger.
var ErrUnknownAccount = errors.New("unknown account")

// Service routes signals to per-account controllers. Each account owns an
// independent ledger; there is no shared mutable state between accounts.
// Accounts are created lazily from the configured factory on first signal.
type Service struct {
	mu             sync.Mutex
	controllers    map[string]*Controller
	newController  func(account string) (*Controller, error)
	defaultAccount string
}

func NewService(defaultAccount string, factory func(account string) (*Controller, error)) *Service {
	return &Service{
		controllers:    make(map[string]*Controller),
		newController:  factory,
		defaultAccount: defaultAccount,
	}
}

// Controller returns the account's controller, creating it on first use.
func (s *Service) Controller(account string) (*Controller, error) {
	if account == "" {
		account = s.defaultAccount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.controllers[account]; ok {
		return c, nil
	}
	c, err := s.newController(account)
	if err != nil {
		return nil, fmt.Errorf("create controller for account %s: %w", account, err)
	}
	s.controllers[account] = c
	return c, nil
}

// Evaluate routes the signal to its account's controller.
func (s *Service) Evaluate(sig Signal) (Decision, error) {
	c, err := s.Controller(sig.Account)
	if err != nil {
		return Decision{}, err
	}
	return c.Evaluate(sig), nil
}

// Close routes a trade close to its account's controller. Closing against
// an account that never admitted anything is a bookkeeping bug upstream.
func (s *Service) Close(tc TradeClose) error {
	account := tc.Account
	if account == "" {
		account = s.defaultAccount
	}

	s.mu.Lock()
	c, ok := s.controllers[account]
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, account)
	}
	return c.Close(tc)
}

// Accounts lists accounts with live controllers.
func (s *Service) Accounts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.controllers))
	for a := range s.controllers {
		out = append(out, a)
	}
	return out
}
