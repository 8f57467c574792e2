// Copyright 2026 Keepsake Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package search implements the query path of the vault.
//
// A query is first classified into an intent. Pure metadata queries
// ("files from today") bypass relevance scoring entirely and return a
// filtered, recency-scored listing. Everything else runs the full
// pipeline:
//
//   - Semantic search over fragment content vectors and item metadata
//     vectors, blended into a base score
//   - Lexical BM25 over fragment bodies, widened by intent expansion
//     terms, with a penalty for very short fragments
//   - A multiplicative boost toward the current session's focus,
//     derived from recently viewed items
//   - Weighted fusion of the boosted semantic score and the normalized
//     lexical score, with a floor below which results are dropped
//
// Results are deterministic for a fixed store state: ties are broken by
// creation time, then by ID.
package search
