package badger

import (
	"context"
	"math"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/keepsake-dev/keepsake/core"
	"github.com/keepsake-dev/keepsake/storage"
)

// BM25 parameters, standard values.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

var _ storage.Index = (*Backend)(nil)

// SearchContent finds fragments whose content vectors are similar to the
// query vector. The vault is small enough that a full scan beats
// maintaining an approximate index.
func (b *Backend) SearchContent(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*storage.FragmentMatch, error) {
	var results []*storage.FragmentMatch

	err := b.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(fragmentPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var fragment *core.Fragment
			err := iter.Item().Value(func(val []byte) error {
				var err error
				fragment, err = storage.UnmarshalFragment(val)
				return err
			})
			if err != nil {
				return err
			}

			// Skip fragments not yet embedded
			if len(fragment.Vector) == 0 {
				continue
			}

			similarity := core.CosineSimilarity(vector, fragment.Vector)
			if similarity >= minSimilarity {
				results = append(results, &storage.FragmentMatch{
					Fragment: fragment,
					Score:    similarity,
				})
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	sortMatchesDescending(results)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// SearchMetadata finds items whose metadata vectors are similar to the
// query vector. Items that have not been enriched yet carry no metadata
// vector and are skipped.
func (b *Backend) SearchMetadata(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*storage.ItemMatch, error) {
	var results []*storage.ItemMatch

	err := b.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(itemPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var item *core.Item
			err := iter.Item().Value(func(val []byte) error {
				var err error
				item, err = storage.UnmarshalItem(val)
				return err
			})
			if err != nil {
				return err
			}

			if len(item.MetaVector) == 0 {
				continue
			}

			similarity := core.CosineSimilarity(vector, item.MetaVector)
			if similarity >= minSimilarity {
				results = append(results, &storage.ItemMatch{
					Item:  item,
					Score: similarity,
				})
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *storage.ItemMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// lexicalCandidate carries per-fragment statistics for BM25 scoring.
type lexicalCandidate struct {
	fragment *core.Fragment
	termFreq map[string]int
	length   int
}

// SearchLexical scores fragments against the query terms with BM25.
// Corpus statistics (document frequency, average length) are computed
// over the whole fragment set in the same scan.
func (b *Backend) SearchLexical(ctx context.Context, terms []string, limit int) ([]*storage.FragmentMatch, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	wanted := make(map[string]bool, len(terms))
	for _, t := range terms {
		wanted[t] = true
	}

	var candidates []*lexicalCandidate
	docFreq := make(map[string]int, len(terms))
	totalDocs := 0
	totalLength := 0

	err := b.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(fragmentPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var fragment *core.Fragment
			err := iter.Item().Value(func(val []byte) error {
				var err error
				fragment, err = storage.UnmarshalFragment(val)
				return err
			})
			if err != nil {
				return err
			}

			tokens := core.Tokenize(fragment.Body)
			totalDocs++
			totalLength += len(tokens)

			var tf map[string]int
			for _, tok := range tokens {
				if !wanted[tok] {
					continue
				}
				if tf == nil {
					tf = make(map[string]int, len(terms))
				}
				tf[tok]++
			}
			if tf == nil {
				continue
			}

			for term := range tf {
				docFreq[term]++
			}
			candidates = append(candidates, &lexicalCandidate{
				fragment: fragment,
				termFreq: tf,
				length:   len(tokens),
			})
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	if totalDocs == 0 || len(candidates) == 0 {
		return nil, nil
	}

	avgLength := float64(totalLength) / float64(totalDocs)

	var results []*storage.FragmentMatch
	for _, cand := range candidates {
		var score float64
		for term, tf := range cand.termFreq {
			df := docFreq[term]
			idf := math.Log(1 + (float64(totalDocs)-float64(df)+0.5)/(float64(df)+0.5))
			norm := bm25K1 * (1 - bm25B + bm25B*float64(cand.length)/avgLength)
			score += idf * (float64(tf) * (bm25K1 + 1)) / (float64(tf) + norm)
		}
		if score <= 0 {
			continue
		}
		results = append(results, &storage.FragmentMatch{
			Fragment: cand.fragment,
			Score:    float32(score),
		})
	}

	sortMatchesDescending(results)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// sortMatchesDescending orders fragment matches by score, highest first.
func sortMatchesDescending(matches []*storage.FragmentMatch) {
	slices.SortFunc(matches, func(a, b *storage.FragmentMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})
}
