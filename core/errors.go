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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidItem indicates an Item failed validation.
	ErrInvalidItem = errors.New("invalid item")

	// ErrInvalidFragment indicates a Fragment failed validation.
	ErrInvalidFragment = errors.New("invalid fragment")

	// ErrInvalidConnection indicates a Connection failed validation.
	ErrInvalidConnection = errors.New("invalid connection")

	// ErrEmptyBody indicates a fragment body is empty.
	ErrEmptyBody = errors.New("fragment body cannot be empty")

	// ErrInvalidKind indicates an unrecognized ItemKind value.
	ErrInvalidKind = errors.New("invalid item kind")

	// ErrSelfConnection indicates a connection referencing the same item twice.
	ErrSelfConnection = errors.New("connection must reference two distinct items")

	// ErrInvalidScore indicates a similarity score outside [0,1].
	ErrInvalidScore = errors.New("score must be within [0,1]")
)
