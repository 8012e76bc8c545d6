package leave

import (
	"math"
	"strings"
)

// tfidfModel is a small TF-IDF vector space over word 1-2 grams, fitted
// once at construction over the category keyword corpus. Smoothed idf and
// l2 normalization match the conventional formulation, so cosine
// similarity reduces to a dot product.
type tfidfModel struct {
	vocab      map[string]int
	idf        []float64
	docVectors [][]float64
}

func newTFIDFModel(docs []string) *tfidfModel {
	m := &tfidfModel{vocab: make(map[string]int)}

	tokenized := make([][]string, len(docs))
	for i, doc := range docs {
		tokenized[i] = ngrams(doc)
		for _, term := range tokenized[i] {
			if _, ok := m.vocab[term]; !ok {
				m.vocab[term] = len(m.vocab)
			}
		}
	}

	df := make([]int, len(m.vocab))
	for _, terms := range tokenized {
		seen := make(map[int]bool, len(terms))
		for _, term := range terms {
			idx := m.vocab[term]
			if !seen[idx] {
				df[idx]++
				seen[idx] = true
			}
		}
	}

	n := float64(len(docs))
	m.idf = make([]float64, len(m.vocab))
	for i, d := range df {
		m.idf[i] = math.Log((1+n)/(1+float64(d))) + 1
	}

	m.docVectors = make([][]float64, len(docs))
	for i, terms := range tokenized {
		m.docVectors[i] = m.vectorize(terms)
	}

	return m
}

// Similarities returns the cosine similarity between text and every fitted
// document, in document order.
func (m *tfidfModel) Similarities(text string) []float64 {
	vec := m.vectorize(ngrams(text))
	sims := make([]float64, len(m.docVectors))
	for i, doc := range m.docVectors {
		sims[i] = dot(vec, doc)
	}
	return sims
}

func (m *tfidfModel) vectorize(terms []string) []float64 {
	vec := make([]float64, len(m.vocab))
	for _, term := range terms {
		if idx, ok := m.vocab[term]; ok {
			vec[idx]++
		}
	}
	var norm float64
	for i := range vec {
		vec[i] *= m.idf[i]
		norm += vec[i] * vec[i]
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// ngrams emits word unigrams and bigrams. Single-rune tokens are dropped,
// mirroring the usual \w\w+ token pattern.
func ngrams(text string) []string {
	words := strings.Fields(text)
	tokens := words[:0:0]
	for _, w := range words {
		if len([]rune(w)) >= 2 {
			tokens = append(tokens, w)
		}
	}

	grams := make([]string, 0, len(tokens)*2)
	grams = append(grams, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		grams = append(grams, tokens[i]+" "+tokens[i+1])
	}
	return grams
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
