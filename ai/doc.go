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


// Package ai provides abstractions for the sentence-embedding backends used in sentsim.
//
// This package defines the interfaces the embedding pipeline and the
// measurement service depend on, so that the local inference graph and the
// remote embedding service are interchangeable.
//
// # Interfaces
//
//   - InferenceBackend: runs the sentence-encoder graph on token ids and
//     returns per-token vectors
//   - Embedder: turns text into a unit-length vector
//   - Scorer: scores a batch of candidate sentences against a query
//   - Provider: aggregates an Embedder and a Scorer that share one backend
//
// # Implementation Packages
//
//   - ai/onnx: local inference with ONNX Runtime
//   - ai/openai: remote OpenAI-compatible embedding services
//   - ai/mock: test doubles for unit testing without a model
//
// The backend is chosen once, when the Provider is constructed, from
// Config.Backend. Callers never branch on the concrete type.
//
// # Constructor Return Type Pattern
//
// Production constructors (onnx.NewProvider, openai.NewProvider) return
// interface types. Test constructors (mock.NewMockEmbedder, mock.NewMockBackend)
// return concrete types so tests can inspect call counts.
package ai
