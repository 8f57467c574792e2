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


package connections

import "errors"

var (
	// ErrItemRepositoryRequired is returned when an item repository is not provided.
	ErrItemRepositoryRequired = errors.New("item repository required")

	// ErrFragmentRepositoryRequired is returned when a fragment repository is not provided.
	ErrFragmentRepositoryRequired = errors.New("fragment repository required")

	// ErrConnectionRepositoryRequired is returned when a connection repository is not provided.
	ErrConnectionRepositoryRequired = errors.New("connection repository required")
)
