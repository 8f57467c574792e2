// Package connections discovers relationships between vault items.
//
// Two items are connected when the cosine similarity of their mean
// fragment vectors is strictly above ConnectionThreshold. Discovery runs
// incrementally after an item finishes embedding (DiscoverFor) or as a
// full pairwise sweep (Sweep). Connections are symmetric and stored once
// per pair.
package connections
