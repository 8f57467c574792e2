// Package consolidate merges clusters of small, similar text notes into
// single documents.
//
// Candidates are text items whose total fragment length is at most
// SmallDocLimit characters. Pairs at or above ClusterThreshold similarity
// are grouped transitively with a union-find, so clusters form regardless
// of insertion order. Each cluster of two or more items is merged by the
// language model, the merged document is re-ingested through the normal
// pipeline, and the source items are deleted. A failed merge leaves its
// cluster untouched; the run continues with the next cluster.
package consolidate
