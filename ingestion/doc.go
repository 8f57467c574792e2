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


// Package ingestion brings content into the vault.
//
// Ingest stores the item and its fragments synchronously, then hands the
// item to two worker pools: one embeds the fragments and triggers
// incremental connection discovery, the other generates the title, tags,
// summary, and metadata embedding. Failures in the asynchronous stages
// are logged and retried on a backoff; they never fail the ingest call.
//
// Duplicate content is detected by hash before anything is stored.
package ingestion
