// Copyright 2026 Keepsake Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

// MemoryStore bundles an in-memory backend with all repositories for tests.
type MemoryStore struct {
	Backend     *Backend
	Items       *ItemRepository
	Fragments   *FragmentRepository
	Connections *ConnectionRepository
	Sessions    *SessionRepository
}

// NewMemoryStore creates in-memory repositories for testing.
// Caller must Close the store when done.
func NewMemoryStore() (*MemoryStore, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}

	items, err := NewItemRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	fragments, err := NewFragmentRepository(backend)
	if err != nil {
		items.Close()
		backend.Close()
		return nil, err
	}

	sessions, err := NewSessionRepository(backend)
	if err != nil {
		fragments.Close()
		items.Close()
		backend.Close()
		return nil, err
	}

	return &MemoryStore{
		Backend:     backend,
		Items:       items,
		Fragments:   fragments,
		Connections: NewConnectionRepository(backend),
		Sessions:    sessions,
	}, nil
}

// Close releases all repositories and the backend.
func (s *MemoryStore) Close() error {
	s.Items.Close()
	s.Fragments.Close()
	s.Sessions.Close()
	s.Connections.Close()
	return s.Backend.Close()
}
