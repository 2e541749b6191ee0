// Nexa Fund Recommender - Hybrid Campaign Recommendation Engine
// Copyright 2026 Nexa Fund
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexafund/recommender

package recommend

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// vectorizer is a TF-IDF term weighter fitted over one document
// corpus. Donor and campaign documents are fitted together so both
// entity types share a single term space.
//
// Term handling: lowercase, word tokens of two or more characters,
// English stop words removed, unigrams and bigrams, sublinear term
// frequency, smoothed inverse document frequency, per-document L2
// normalization. Terms outside the document-frequency bounds are
// dropped, then the vocabulary is capped at MaxFeatures terms by
// corpus frequency.
type vectorizer struct {
	cfg EmbeddingConfig

	// vocabulary maps a term to its feature index. Indices follow
	// alphabetical term order for reproducibility.
	vocabulary map[string]int

	// idf holds the inverse document frequency per feature index.
	idf []float64
}

// newVectorizer fits a vocabulary over the given documents.
// An empty corpus produces a zero-width vectorizer whose transforms
// are empty vectors.
func newVectorizer(cfg EmbeddingConfig, docs []string) *vectorizer {
	v := &vectorizer{cfg: cfg, vocabulary: make(map[string]int)}
	if len(docs) == 0 {
		return v
	}

	// Document frequency and total corpus frequency per term.
	docFreq := make(map[string]int)
	corpusFreq := make(map[string]int)
	for _, doc := range docs {
		terms := extractTerms(doc)
		seen := make(map[string]struct{}, len(terms))
		for _, term := range terms {
			corpusFreq[term]++
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				docFreq[term]++
			}
		}
	}

	// Apply document-frequency bounds.
	maxDF := int(math.Floor(cfg.MaxDocFreq * float64(len(docs))))
	if maxDF < 1 {
		maxDF = 1
	}
	kept := make([]string, 0, len(docFreq))
	for term, df := range docFreq {
		if df < cfg.MinDocCount || df > maxDF {
			continue
		}
		kept = append(kept, term)
	}

	// Cap the vocabulary by corpus frequency, ties alphabetical.
	if len(kept) > cfg.MaxFeatures {
		sort.Slice(kept, func(i, j int) bool {
			if corpusFreq[kept[i]] != corpusFreq[kept[j]] {
				return corpusFreq[kept[i]] > corpusFreq[kept[j]]
			}
			return kept[i] < kept[j]
		})
		kept = kept[:cfg.MaxFeatures]
	}
	sort.Strings(kept)

	v.idf = make([]float64, len(kept))
	n := float64(len(docs))
	for i, term := range kept {
		v.vocabulary[term] = i
		// Smoothed IDF keeps weights finite for terms in every document.
		v.idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	return v
}

// Size returns the vocabulary width.
func (v *vectorizer) Size() int {
	return len(v.vocabulary)
}

// Transform maps a document to its L2-normalized TF-IDF vector.
func (v *vectorizer) Transform(doc string) []float64 {
	vec := make([]float64, len(v.vocabulary))
	if len(v.vocabulary) == 0 {
		return vec
	}

	counts := make(map[int]int)
	for _, term := range extractTerms(doc) {
		if idx, ok := v.vocabulary[term]; ok {
			counts[idx]++
		}
	}

	var norm float64
	for idx, count := range counts {
		// Sublinear TF dampens long documents.
		tf := 1 + math.Log(float64(count))
		w := tf * v.idf[idx]
		vec[idx] = w
		norm += w * w
	}

	if norm > 0 {
		norm = math.Sqrt(norm)
		for idx := range counts {
			vec[idx] /= norm
		}
	}

	return vec
}

// extractTerms tokenizes a document into stop-word-filtered unigrams
// and bigrams.
func extractTerms(doc string) []string {
	tokens := tokenize(doc)

	terms := make([]string, 0, len(tokens)*2)
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}

// tokenize lowercases and splits a document into word tokens of two or
// more characters, dropping stop words.
func tokenize(doc string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() < 2 {
			current.Reset()
			return
		}
		token := current.String()
		current.Reset()
		if _, stop := englishStopWords[token]; stop {
			return
		}
		tokens = append(tokens, token)
	}

	for _, r := range strings.ToLower(doc) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(r)
			continue
		}
		flush()
	}
	flush()

	return tokens
}
