// Package vectorize implements the sparse weighted-term vector space used
// by the lexical scorer: TF-IDF with unigram+bigram indexing, document
// frequency pruning, and a capped vocabulary.
package vectorize

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Term is one vocabulary entry in a sparse row.
type Term struct {
	Index  int
	Weight float64
}

// SparseVector is a sparse row, sorted by ascending term index.
type SparseVector []Term

// TFIDF builds and applies a term-frequency/inverse-document-frequency
// weighting over a document corpus.
//
// Pruning rules: terms occurring in fewer than MinDocFreq documents or in
// more than MaxDocRatio of all documents are dropped, then the vocabulary
// is capped at MaxFeatures by total corpus frequency. IDF is smoothed:
// ln((1+n)/(1+df)) + 1. Rows are L2-normalized.
type TFIDF struct {
	MaxFeatures int
	MinDocFreq  int
	MaxDocRatio float64
	NGramMax    int

	vocab map[string]int
	idf   []float64
}

// NewTFIDF creates a vectorizer with the standard corpus configuration:
// 5000 features max, min document frequency 2, max document ratio 0.8,
// unigrams and bigrams.
func NewTFIDF() *TFIDF {
	return &TFIDF{
		MaxFeatures: 5000,
		MinDocFreq:  2,
		MaxDocRatio: 0.8,
		NGramMax:    2,
	}
}

// NFeatures returns the fitted vocabulary size.
func (v *TFIDF) NFeatures() int { return len(v.vocab) }

// FitTransform learns the vocabulary and IDF weights from docs and returns
// one sparse weighted row per document, in input order. Re-calling
// replaces the learned state.
//
// A corpus where every term is pruned yields zero-length rows; queries
// against such a space score 0 everywhere rather than failing.
func (v *TFIDF) FitTransform(docs []string) []SparseVector {
	tokenized := make([][]string, len(docs))
	for i, doc := range docs {
		tokenized[i] = v.ngrams(tokenize(doc))
	}

	v.fitVocabulary(tokenized)

	rows := make([]SparseVector, len(docs))
	for i, terms := range tokenized {
		rows[i] = v.transform(terms)
	}
	return rows
}

// Transform maps a single document onto the fitted vocabulary. Unknown
// terms are ignored.
func (v *TFIDF) Transform(doc string) SparseVector {
	return v.transform(v.ngrams(tokenize(doc)))
}

func (v *TFIDF) fitVocabulary(tokenized [][]string) {
	nDocs := len(tokenized)
	docFreq := make(map[string]int)
	corpusFreq := make(map[string]int)

	for _, terms := range tokenized {
		seen := make(map[string]bool, len(terms))
		for _, t := range terms {
			corpusFreq[t]++
			if !seen[t] {
				seen[t] = true
				docFreq[t]++
			}
		}
	}

	maxDF := int(v.MaxDocRatio * float64(nDocs))
	kept := make([]string, 0, len(docFreq))
	for term, df := range docFreq {
		if df < v.MinDocFreq || df > maxDF {
			continue
		}
		kept = append(kept, term)
	}

	if v.MaxFeatures > 0 && len(kept) > v.MaxFeatures {
		// Highest corpus frequency wins; ties resolve lexicographically
		// so the cap is deterministic.
		sort.Slice(kept, func(a, b int) bool {
			if corpusFreq[kept[a]] != corpusFreq[kept[b]] {
				return corpusFreq[kept[a]] > corpusFreq[kept[b]]
			}
			return kept[a] < kept[b]
		})
		kept = kept[:v.MaxFeatures]
	}

	sort.Strings(kept)

	v.vocab = make(map[string]int, len(kept))
	v.idf = make([]float64, len(kept))
	for i, term := range kept {
		v.vocab[term] = i
		v.idf[i] = math.Log(float64(1+nDocs)/float64(1+docFreq[term])) + 1
	}
}

func (v *TFIDF) transform(terms []string) SparseVector {
	counts := make(map[int]int)
	for _, t := range terms {
		if idx, ok := v.vocab[t]; ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	row := make(SparseVector, 0, len(counts))
	var norm float64
	for idx, tf := range counts {
		w := float64(tf) * v.idf[idx]
		row = append(row, Term{Index: idx, Weight: w})
		norm += w * w
	}

	norm = math.Sqrt(norm)
	for i := range row {
		row[i].Weight /= norm
	}

	sort.Slice(row, func(a, b int) bool { return row[a].Index < row[b].Index })
	return row
}

// ngrams expands a token sequence into unigrams plus adjacent pairs up to
// NGramMax, joined by a single space.
func (v *TFIDF) ngrams(tokens []string) []string {
	if v.NGramMax <= 1 {
		return tokens
	}
	out := make([]string, 0, len(tokens)*2)
	out = append(out, tokens...)
	for n := 2; n <= v.NGramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}

// tokenize lowercases and splits on non-alphanumeric runes, dropping
// single-character tokens.
func tokenize(doc string) []string {
	fields := strings.FieldsFunc(strings.ToLower(doc), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) > 1 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
