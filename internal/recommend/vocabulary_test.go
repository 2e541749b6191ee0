// Nexa Fund Recommender - Hybrid Campaign Recommendation Engine
// Copyright 2026 Nexa Fund
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexafund/recommender

package recommend

import (
	"math"
	"testing"
)

func defaultEmbeddingConfig() EmbeddingConfig {
	return DefaultConfig().Embedding
}

func TestTokenizeDropsStopWordsAndShortTokens(t *testing.T) {
	got := tokenize("The quick fox, a 3D movie!")
	want := []string{"quick", "fox", "3d", "movie"}
	if len(got) != len(want) {
		t.Fatalf("tokenize returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExtractTermsIncludesBigrams(t *testing.T) {
	terms := extractTerms("solar panel school")
	set := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		set[term] = struct{}{}
	}

	for _, want := range []string{"solar", "panel", "school", "solar panel", "panel school"} {
		if _, ok := set[want]; !ok {
			t.Errorf("expected term %q in %v", want, terms)
		}
	}
}

func TestVectorizerEmptyCorpus(t *testing.T) {
	v := newVectorizer(defaultEmbeddingConfig(), nil)
	if v.Size() != 0 {
		t.Errorf("empty corpus should have empty vocabulary, got %d", v.Size())
	}
	if vec := v.Transform("anything"); len(vec) != 0 {
		t.Errorf("expected empty vector, got length %d", len(vec))
	}
}

func TestVectorizerTransformIsL2Normalized(t *testing.T) {
	docs := []string{
		"solar energy for rural schools",
		"medical clinic equipment fund",
		"community theater renovation",
	}
	v := newVectorizer(defaultEmbeddingConfig(), docs)

	vec := v.Transform(docs[0])
	var norm float64
	for _, x := range vec {
		norm += x * x
	}
	if math.Abs(norm-1) > 1e-9 {
		t.Errorf("transform norm = %v, want 1", math.Sqrt(norm))
	}
}

func TestVectorizerZeroVectorForUnknownTerms(t *testing.T) {
	v := newVectorizer(defaultEmbeddingConfig(), []string{"solar energy", "clean water"})
	vec := v.Transform("quantum blockchain")
	for i, x := range vec {
		if x != 0 {
			t.Errorf("expected zero vector, got %v at %d", x, i)
		}
	}
}

func TestVectorizerMaxFeaturesCap(t *testing.T) {
	cfg := defaultEmbeddingConfig()
	cfg.MaxFeatures = 3
	docs := []string{
		"alpha beta gamma delta",
		"alpha beta gamma",
		"alpha beta",
		"alpha",
		"omega",
	}
	v := newVectorizer(cfg, docs)
	if v.Size() != 3 {
		t.Errorf("expected vocabulary capped at 3, got %d", v.Size())
	}
	// The most frequent unigrams survive the cap.
	if _, ok := v.vocabulary["alpha"]; !ok {
		t.Error("expected most frequent term to survive the cap")
	}
}

func TestVectorizerMaxDocFreqDropsUbiquitousTerms(t *testing.T) {
	cfg := defaultEmbeddingConfig()
	cfg.MaxDocFreq = 0.5
	docs := []string{
		"water project alpha",
		"water project beta",
		"water gamma",
		"water delta",
	}
	v := newVectorizer(cfg, docs)
	if _, ok := v.vocabulary["water"]; ok {
		t.Error("term in every document should be dropped at max_doc_freq 0.5")
	}
	if _, ok := v.vocabulary["gamma"]; !ok {
		t.Error("rare term should be kept")
	}
}

func TestVectorizerSharedSpaceSimilarity(t *testing.T) {
	docs := []string{
		"education teacher classroom supplies",
		"classroom supplies for teacher training",
		"deep sea fishing boat repair",
	}
	v := newVectorizer(defaultEmbeddingConfig(), docs)

	related := safeCosine(v.Transform(docs[0]), v.Transform(docs[1]))
	unrelated := safeCosine(v.Transform(docs[0]), v.Transform(docs[2]))
	if related <= unrelated {
		t.Errorf("related docs should score higher: related=%v unrelated=%v", related, unrelated)
	}
}
