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


// Package embedding turns token sequences into unit-length sentence vectors
// and scores them against each other.
//
// The Pipeline submits a TokenSequence to an ai.InferenceBackend, mean-pools
// the per-token vectors under the attention mask and L2-normalizes the
// result. Because every vector is unit length, the dot product computed by
// Dot is the cosine similarity.
//
// Scorer implements ai.Scorer on top of any ai.Embedder: the query is
// embedded once and candidates are embedded one at a time, so at most one
// inference call is in flight per measurement.
//
// CachedEmbedder wraps an ai.Embedder with a storage.EmbeddingCache keyed by
// model and text.
package embedding
