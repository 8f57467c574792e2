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


package ai

import "errors"

var (
	// ErrTransient indicates a timeout, quota, or network failure from a
	// generative service. Callers may retry with backoff or fall back.
	ErrTransient = errors.New("transient service error")

	// ErrSchema indicates a generative service returned output that does
	// not match the expected response schema. Callers apply their
	// documented fallback; this never surfaces as a crash.
	ErrSchema = errors.New("malformed structured output")

	// ErrEmptyInput indicates a request with no text to process.
	ErrEmptyInput = errors.New("empty input")
)
