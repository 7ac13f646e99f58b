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

import (
	"fmt"
	"strings"
)

// ValidateQuery checks a measurement query.
// Whitespace-only queries are treated as empty.
func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyQuery)
	}
	return nil
}

// ValidateCorpus checks that there is at least one sentence to measure against.
func ValidateCorpus(sentences []string) error {
	if len(sentences) == 0 {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyStore)
	}
	return nil
}

// ValidateSentence checks a sentence before it is registered.
func ValidateSentence(sentence string) error {
	if strings.TrimSpace(sentence) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptySentence)
	}
	return nil
}

// StoreError wraps a store rejection reason under ErrStore.
func StoreError(reason error, sentence string) error {
	return fmt.Errorf("%w: %w: %q", ErrStore, reason, sentence)
}
