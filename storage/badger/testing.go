// Copyright 2025 Poiesic Systems
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

import "github.com/poiesic/shadowsync/storage"

// NewMemoryRepositories creates in-memory graph, vector and event repositories.
// The engine runs on these; tests use them too.
// Caller must close the repos and the backend when done.
func NewMemoryRepositories() (storage.GraphRepository, storage.VectorRepository, storage.EventRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	graphRepo, err := NewGraphRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, nil, err
	}

	vectorRepo, err := NewVectorRepository(backend)
	if err != nil {
		graphRepo.Close()
		backend.Close()
		return nil, nil, nil, nil, err
	}

	eventRepo, err := NewEventRepository(backend)
	if err != nil {
		vectorRepo.Close()
		graphRepo.Close()
		backend.Close()
		return nil, nil, nil, nil, err
	}

	return graphRepo, vectorRepo, eventRepo, backend, nil
}
