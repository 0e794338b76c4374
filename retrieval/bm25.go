package retrieval

import "math"

// Standard BM25 parameters.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// bm25Corpus holds the term statistics of one document's chunk texts.
type bm25Corpus struct {
	termFreqs []map[string]int
	docLens   []int
	docFreq   map[string]int
	avgLen    float64
}

func newBM25Corpus(docs [][]string) *bm25Corpus {
	c := &bm25Corpus{
		termFreqs: make([]map[string]int, len(docs)),
		docLens:   make([]int, len(docs)),
		docFreq:   make(map[string]int),
	}

	total := 0
	for i, terms := range docs {
		tf := make(map[string]int, len(terms))
		for _, term := range terms {
			tf[term]++
		}
		c.termFreqs[i] = tf
		c.docLens[i] = len(terms)
		total += len(terms)

		for term := range tf {
			c.docFreq[term]++
		}
	}
	if len(docs) > 0 {
		c.avgLen = float64(total) / float64(len(docs))
	}
	return c
}

// idf uses the standard smoothed formulation, which stays positive for
// terms present in every chunk.
func (c *bm25Corpus) idf(term string) float64 {
	df := c.docFreq[term]
	n := len(c.termFreqs)
	return math.Log(1.0 + (float64(n)-float64(df)+0.5)/(float64(df)+0.5))
}

// score computes the BM25 relevance of query terms against chunk i.
func (c *bm25Corpus) score(query []string, i int) float64 {
	if c.avgLen == 0 {
		return 0
	}

	lenNorm := 1.0 - bm25B + bm25B*float64(c.docLens[i])/c.avgLen
	score := 0.0
	for _, term := range query {
		tf := float64(c.termFreqs[i][term])
		if tf == 0 {
			continue
		}
		score += c.idf(term) * tf * (bm25K1 + 1.0) / (tf + bm25K1*lenNorm)
	}
	return score
}
