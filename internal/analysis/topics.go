package analysis

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
)

const (
	DefaultTopics     = 10
	DefaultTopWords   = 5
	DefaultIterations = 200
	DefaultTopicSeed  = 111
)

// TopicModel fits latent Dirichlet allocation over bag-of-words counts with
// collapsed Gibbs sampling. Alpha and eta are both 1/Topics.
type TopicModel struct {
	Topics     int
	TopWords   int
	Iterations int
	Seed       int64
}

func DefaultTopicModel() TopicModel {
	return TopicModel{
		Topics:     DefaultTopics,
		TopWords:   DefaultTopWords,
		Iterations: DefaultIterations,
		Seed:       DefaultTopicSeed,
	}
}

// Topic holds a topic's highest weighted words, heaviest first.
type Topic struct {
	Index int
	Words []string
}

// Vocabulary is the sorted set of terms and each document as term ids.
type Vocabulary struct {
	Terms []string
	Docs  [][]int
}

// Vectorize builds the vocabulary over texts.
func Vectorize(texts []string) Vocabulary {
	tokenized := make([][]string, len(texts))
	seen := map[string]bool{}
	for i, text := range texts {
		tokenized[i] = CountTokens(text)
		for _, tok := range tokenized[i] {
			seen[tok] = true
		}
	}

	terms := make([]string, 0, len(seen))
	for t := range seen {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	ids := make(map[string]int, len(terms))
	for i, t := range terms {
		ids[t] = i
	}

	docs := make([][]int, len(texts))
	for i, toks := range tokenized {
		doc := make([]int, len(toks))
		for j, tok := range toks {
			doc[j] = ids[tok]
		}
		docs[i] = doc
	}

	return Vocabulary{Terms: terms, Docs: docs}
}

// Fit returns the top words of every topic, or nil when texts share no
// countable terms.
func (m TopicModel) Fit(texts []string) []Topic {
	vocab := Vectorize(texts)
	if len(vocab.Terms) == 0 || m.Topics <= 0 {
		return nil
	}

	weights := m.sample(vocab)

	topics := make([]Topic, m.Topics)
	for k := range topics {
		topics[k] = Topic{Index: k, Words: topTerms(mat.Row(nil, k, weights), vocab.Terms, m.TopWords)}
	}
	return topics
}

// sample runs the Gibbs sampler and returns the topic-word distribution,
// one row per topic, each row summing to 1.
func (m TopicModel) sample(vocab Vocabulary) *mat.Dense {
	nTopics, nTerms := m.Topics, len(vocab.Terms)
	alpha := 1 / float64(nTopics)
	eta := 1 / float64(nTopics)
	rng := rand.New(rand.NewSource(m.Seed))

	docTopic := make([][]int, len(vocab.Docs))
	topicTerm := make([][]int, nTopics)
	for k := range topicTerm {
		topicTerm[k] = make([]int, nTerms)
	}
	topicTotal := make([]int, nTopics)
	assign := make([][]int, len(vocab.Docs))

	for d, doc := range vocab.Docs {
		docTopic[d] = make([]int, nTopics)
		assign[d] = make([]int, len(doc))
		for i, w := range doc {
			k := rng.Intn(nTopics)
			assign[d][i] = k
			docTopic[d][k]++
			topicTerm[k][w]++
			topicTotal[k]++
		}
	}

	p := make([]float64, nTopics)
	for it := 0; it < m.Iterations; it++ {
		for d, doc := range vocab.Docs {
			for i, w := range doc {
				k := assign[d][i]
				docTopic[d][k]--
				topicTerm[k][w]--
				topicTotal[k]--

				var total float64
				for t := 0; t < nTopics; t++ {
					p[t] = (float64(docTopic[d][t]) + alpha) *
						(float64(topicTerm[t][w]) + eta) /
						(float64(topicTotal[t]) + float64(nTerms)*eta)
					total += p[t]
				}

				u := rng.Float64() * total
				k = nTopics - 1
				for t := 0; t < nTopics; t++ {
					u -= p[t]
					if u <= 0 {
						k = t
						break
					}
				}

				assign[d][i] = k
				docTopic[d][k]++
				topicTerm[k][w]++
				topicTotal[k]++
			}
		}
	}

	weights := mat.NewDense(nTopics, nTerms, nil)
	for k := 0; k < nTopics; k++ {
		for w := 0; w < nTerms; w++ {
			weights.Set(k, w, float64(topicTerm[k][w])+eta)
		}
	}
	for k := 0; k < nTopics; k++ {
		row := weights.RawRowView(k)
		sum := mat.Sum(mat.NewVecDense(nTerms, row))
		for w := range row {
			row[w] /= sum
		}
	}

	return weights
}

// topTerms returns the n heaviest terms, ties in vocabulary order.
func topTerms(weights []float64, terms []string, n int) []string {
	idx := make([]int, len(weights))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return weights[idx[a]] > weights[idx[b]] })

	n = min(n, len(idx))
	words := make([]string, n)
	for i := 0; i < n; i++ {
		words[i] = terms[idx[i]]
	}
	return words
}
