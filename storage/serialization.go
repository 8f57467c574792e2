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


package storage

import (
	"github.com/keepsake-dev/keepsake/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalItem serializes an Item to bytes.
func MarshalItem(item *core.Item) []byte {
	buf := make([]byte, core.ItemMUS.Size(*item))
	core.ItemMUS.Marshal(*item, buf)
	return buf
}

// UnmarshalItem deserializes an Item from bytes.
func UnmarshalItem(data []byte) (*core.Item, error) {
	item, _, err := core.ItemMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// MarshalFragment serializes a Fragment to bytes.
func MarshalFragment(fragment *core.Fragment) []byte {
	buf := make([]byte, core.FragmentMUS.Size(*fragment))
	core.FragmentMUS.Marshal(*fragment, buf)
	return buf
}

// UnmarshalFragment deserializes a Fragment from bytes.
func UnmarshalFragment(data []byte) (*core.Fragment, error) {
	fragment, _, err := core.FragmentMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &fragment, nil
}

// MarshalConnection serializes a Connection to bytes.
func MarshalConnection(connection *core.Connection) []byte {
	buf := make([]byte, core.ConnectionMUS.Size(*connection))
	core.ConnectionMUS.Marshal(*connection, buf)
	return buf
}

// UnmarshalConnection deserializes a Connection from bytes.
func UnmarshalConnection(data []byte) (*core.Connection, error) {
	connection, _, err := core.ConnectionMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &connection, nil
}

// MarshalSessionEntry serializes a SessionEntry to bytes.
func MarshalSessionEntry(entry *core.SessionEntry) []byte {
	buf := make([]byte, core.SessionEntryMUS.Size(*entry))
	core.SessionEntryMUS.Marshal(*entry, buf)
	return buf
}

// UnmarshalSessionEntry deserializes a SessionEntry from bytes.
func UnmarshalSessionEntry(data []byte) (*core.SessionEntry, error) {
	entry, _, err := core.SessionEntryMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
