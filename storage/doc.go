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


// Package storage provides the storage abstraction layer for shadowsync.
//
// This package defines repository interfaces that decouple storage implementation
// from the ingestion pipeline and the query facade. The only backend today is
// BadgerDB running in memory, see the badger subpackage.
//
// # Architecture
//
//   - Repository: transaction support and resource release
//   - GraphRepository: label-keyed nodes plus append-only relationships
//   - VectorRepository: append-only 2D points
//   - EventRepository: bounded event log, newest first
//
// # Usage
//
//	graph, vectors, events, backend, err := badger.NewMemoryRepositories()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
