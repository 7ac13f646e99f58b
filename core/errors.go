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


package core

import "errors"

// Request validation errors
var (
	// ErrValidation indicates a request failed validation before any backend call.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyQuery indicates the measurement query is empty.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrEmptyStore indicates there are no sentences to measure against.
	ErrEmptyStore = errors.New("no sentences to detect")

	// ErrEmptySentence indicates a sentence to register is empty.
	ErrEmptySentence = errors.New("sentence cannot be empty")
)

// Measurement errors
var (
	// ErrBusy indicates a measurement is already in flight.
	ErrBusy = errors.New("model is executing")

	// ErrInferenceFailure indicates the inference backend produced no usable output.
	ErrInferenceFailure = errors.New("inference failed")

	// ErrThresholdNotMet indicates the best combined score is below the similarity threshold.
	ErrThresholdNotMet = errors.New("no sufficiently similar sentence")
)

// Sentence store errors
var (
	// ErrStore is the parent of all sentence store rejections.
	ErrStore = errors.New("sentence store error")

	// ErrStoreFull indicates the store already holds its maximum number of sentences.
	ErrStoreFull = errors.New("sentence store is full")

	// ErrDuplicateSentence indicates the exact sentence is already registered.
	ErrDuplicateSentence = errors.New("sentence already registered")

	// ErrSentenceNotFound indicates the sentence to delete is not registered.
	ErrSentenceNotFound = errors.New("sentence not registered")
)

// ErrInvalidVectorLength indicates an encoded vector declares an impossible length.
var ErrInvalidVectorLength = errors.New("invalid vector length")
