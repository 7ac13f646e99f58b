// Package keyword extracts weighted key phrases from short texts with RAKE
// (Rapid Automatic Keyword Extraction).
//
// Text is cut into candidate phrases at punctuation and stopwords. Each
// word is scored by degree over frequency in the co-occurrence graph of the
// surviving phrases, and a phrase scores the sum of its words.
//
// StripNegations removes negated clauses before extraction so that a
// rejected concept does not surface as a keyword.
package keyword
