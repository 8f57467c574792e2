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


// Package ai defines the capability interfaces for generative services:
// text embedding, query intent classification, item enrichment, and
// fragment merging.
//
// Every interface that calls a generative model returns structured values
// validated against a strict schema. Callers are expected to degrade
// gracefully: intent classification has a pure fallback value, and
// transient failures are distinguished from schema failures so each
// component can apply its own failure policy.
package ai
