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


// Package onnx provides the local embedding backend using ONNX Runtime.
//
// The Backend loads a BERT-style sentence encoder exported to ONNX and runs
// it through github.com/yalue/onnxruntime_go. The graph takes int64 inputs
// named input_ids, attention_mask and token_type_ids of shape [1, N] and
// produces float32 token embeddings of shape [1, N, H].
//
// Every Infer call allocates its input and output tensors and destroys
// them before returning, on success and failure alike. The session is
// created once and destroyed by Close.
//
// # Usage
//
//	config := ai.NewConfig(
//	    ai.WithModelPath("models/all-MiniLM-L6-v2/model.onnx"),
//	    ai.WithVocabularyPath("models/all-MiniLM-L6-v2/vocab.txt"),
//	    ai.WithRuntimeLibraryPath("/usr/lib/libonnxruntime.so"),
//	)
//
//	provider, err := onnx.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	scores, err := provider.Scorer().ScoreAll(ctx, "I adore cats", []string{"I love cats"})
package onnx
