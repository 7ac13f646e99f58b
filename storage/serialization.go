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


package storage

import (
	"fmt"

	"github.com/poiesic/sentsim/core"
)

// MarshalSentenceRecord serializes a SentenceRecord to bytes.
func MarshalSentenceRecord(record *core.SentenceRecord) []byte {
	buf := make([]byte, core.SentenceRecordMUS.Size(*record))
	core.SentenceRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalSentenceRecord deserializes a SentenceRecord from bytes.
func UnmarshalSentenceRecord(data []byte) (*core.SentenceRecord, error) {
	record, _, err := core.SentenceRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &record, nil
}

// MarshalVector serializes an embedding vector to bytes.
func MarshalVector(vector []float32) []byte {
	buf := make([]byte, core.VectorMUS.Size(vector))
	core.VectorMUS.Marshal(vector, buf)
	return buf
}

// UnmarshalVector deserializes an embedding vector from bytes.
func UnmarshalVector(data []byte) ([]float32, error) {
	vector, _, err := core.VectorMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return vector, nil
}
