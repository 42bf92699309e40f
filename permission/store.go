// Package permission provides a capability grant store which acts as the
// permission host for discovery.
package permission

import (
	"fmt"
	"strings"
	"sync"

	"github.com/darkhz/bluescan/discovery"
)

// PromptFunc describes a function which asks the user for the provided
// capabilities, and returns the user's answers.
type PromptFunc func(capabilities []discovery.Capability) discovery.Grants

// Store holds the capability grants of the host.
type Store struct {
	grants map[discovery.Capability]bool
	prompt PromptFunc
	mu     sync.RWMutex
}

// NewStore returns a new store with the initial grants. If prompt is nil,
// requests are answered with the current grants.
func NewStore(initial map[discovery.Capability]bool, prompt PromptFunc) *Store {
	grants := make(map[discovery.Capability]bool, len(initial))
	for capability, granted := range initial {
		grants[capability] = granted
	}

	return &Store{grants: grants, prompt: prompt}
}

// IsGranted returns whether the capability is granted.
func (s *Store) IsGranted(capability discovery.Capability) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.grants[capability]
}

// Set grants or revokes the capability.
func (s *Store) Set(capability discovery.Capability, granted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.grants[capability] = granted
}

// Revoke revokes the capability.
func (s *Store) Revoke(capability discovery.Capability) {
	s.Set(capability, false)
}

// SetPrompt sets the function used to ask for capabilities.
func (s *Store) SetPrompt(prompt PromptFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prompt = prompt
}

// PromptForGrant asks for the capabilities in a separate goroutine,
// records the answers, and calls onResult with them.
func (s *Store) PromptForGrant(capabilities []discovery.Capability, onResult func(discovery.Grants)) {
	s.mu.RLock()
	prompt := s.prompt
	s.mu.RUnlock()

	go func() {
		var answers discovery.Grants
		if prompt != nil {
			answers = prompt(capabilities)
		}

		grants := make(discovery.Grants, len(capabilities))

		s.mu.Lock()
		for _, capability := range capabilities {
			if prompt != nil {
				s.grants[capability] = answers[capability]
			}

			grants[capability] = s.grants[capability]
		}
		s.mu.Unlock()

		if onResult != nil {
			onResult(grants)
		}
	}()
}

// ParseGrants parses a grant value, which is either "all", "none",
// or a comma-separated list of capability names.
func ParseGrants(value string) (map[discovery.Capability]bool, error) {
	grants := make(map[discovery.Capability]bool, len(discovery.RequiredCapabilities))

	switch value = strings.TrimSpace(strings.ToLower(value)); value {
	case "", "none":
		return grants, nil

	case "all":
		for _, capability := range discovery.RequiredCapabilities {
			grants[capability] = true
		}

		return grants, nil
	}

	for _, name := range strings.Split(value, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}

		capability, err := discovery.ParseCapability(name)
		if err != nil {
			return nil, fmt.Errorf("provided grant '%s' is incorrect: %w", value, err)
		}

		grants[capability] = true
	}

	return grants, nil
}
