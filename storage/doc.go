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


// Package storage provides the persistence abstraction layer for sentsim.
//
// This package defines repository interfaces that decouple persistence from
// the sentence store and the embedding pipeline, so different backends can
// be used interchangeably.
//
// # Architecture
//
//   - SentenceRepository: loads and saves the ordered reference corpus
//   - EmbeddingCache: stores sentence vectors keyed by model and content
//
// The BadgerDB implementation lives in storage/badger.
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	sentences := badger.NewSentenceRepository(backend)
//	cache := badger.NewEmbeddingCache(backend)
//
// Use in tests with in-memory storage:
//
//	sentences, cache, backend, err := badger.NewMemoryRepositories()
//
// # Thread Safety
//
// All implementations must be safe for concurrent use.
package storage
