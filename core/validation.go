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

import "fmt"

// ValidateItem validates an Item according to domain rules.
//
// Validation rules:
//   - Kind must be a recognized ItemKind
//
// NOT validated (populated by processors):
//   - Title, Tags, Summary, MetaVector (empty until enrichment runs)
//   - ID (0 is valid from database sequences)
func ValidateItem(item *Item) error {
	if item == nil {
		return fmt.Errorf("%w: item is nil", ErrInvalidItem)
	}

	if err := ValidateItemKind(item.Kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidItem, err)
	}

	return nil
}

// ValidateFragment validates a Fragment according to domain rules.
//
// Validation rules:
//   - Body must not be empty
//   - Seq must not be negative
//
// NOT validated (populated by processors):
//   - Vector (empty until the embedding processor runs)
//   - ID (0 is valid from database sequences)
func ValidateFragment(fragment *Fragment) error {
	if fragment == nil {
		return fmt.Errorf("%w: fragment is nil", ErrInvalidFragment)
	}

	if fragment.Body == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFragment, ErrEmptyBody)
	}

	if fragment.Seq < 0 {
		return fmt.Errorf("%w: negative sequence %d", ErrInvalidFragment, fragment.Seq)
	}

	return nil
}

// ValidateConnection validates a Connection according to domain rules.
//
// Validation rules:
//   - The two endpoints must be distinct
//   - Score must be within [0,1]
func ValidateConnection(conn *Connection) error {
	if conn == nil {
		return fmt.Errorf("%w: connection is nil", ErrInvalidConnection)
	}

	if conn.A == conn.B {
		return fmt.Errorf("%w: %w", ErrInvalidConnection, ErrSelfConnection)
	}

	if conn.Score < 0 || conn.Score > 1 {
		return fmt.Errorf("%w: %w: %f", ErrInvalidConnection, ErrInvalidScore, conn.Score)
	}

	return nil
}

// ValidateItemKind validates that an ItemKind has a recognized value.
func ValidateItemKind(kind ItemKind) error {
	switch kind {
	case KindText, KindImage, KindPDF, KindAudio:
		return nil
	default:
		return fmt.Errorf("%w: value %d", ErrInvalidKind, kind)
	}
}
