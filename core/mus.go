package core

import (
	"time"

	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for every persisted record type. The set of types is
// small enough to maintain by hand, and the vector-heavy records benefit
// from the raw float32 element encoding.

var (
	// IDMUS serializes entity IDs.
	IDMUS = idMUS{}
	// ItemMUS serializes items.
	ItemMUS = itemMUS{}
	// FragmentMUS serializes fragments.
	FragmentMUS = fragmentMUS{}
	// ConnectionMUS serializes connections.
	ConnectionMUS = connectionMUS{}
	// SessionEntryMUS serializes session history entries.
	SessionEntryMUS = sessionEntryMUS{}

	vectorMUS  = ord.NewSliceSer[float32](raw.Float32)
	stringsMUS = ord.NewSliceSer[string](ord.String)
)

var (
	_ mus.Serializer[ID]           = IDMUS
	_ mus.Serializer[Item]         = ItemMUS
	_ mus.Serializer[Fragment]     = FragmentMUS
	_ mus.Serializer[Connection]   = ConnectionMUS
	_ mus.Serializer[SessionEntry] = SessionEntryMUS
)

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	u, n, err := varint.Uint64.Unmarshal(bs)
	return ID(u), n, err
}

func (idMUS) Size(v ID) int {
	return varint.Uint64.Size(uint64(v))
}

func (idMUS) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

// Timestamps are persisted as microsecond Unix time.
func marshalTime(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func sizeTime(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

func skipTime(bs []byte) (int, error) {
	return varint.Int64.Skip(bs)
}

type itemMUS struct{}

func (itemMUS) Marshal(v Item, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.SourcePath, bs[n:])
	n += varint.Int.Marshal(int(v.Kind), bs[n:])
	n += ord.String.Marshal(v.Hash, bs[n:])
	n += ord.String.Marshal(v.Title, bs[n:])
	n += stringsMUS.Marshal(v.Tags, bs[n:])
	n += ord.String.Marshal(v.Summary, bs[n:])
	n += vectorMUS.Marshal(v.MetaVector, bs[n:])
	n += marshalTime(v.ModifiedAt, bs[n:])
	n += marshalTime(v.CreatedAt, bs[n:])
	n += marshalTime(v.UpdatedAt, bs[n:])
	n += ord.Bool.Marshal(v.Enriched, bs[n:])
	return n
}

func (itemMUS) Unmarshal(bs []byte) (v Item, n int, err error) {
	var n1 int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.SourcePath, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	var kind int
	if kind, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	v.Kind = ItemKind(kind)
	if v.Hash, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Tags, n1, err = stringsMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Summary, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.MetaVector, n1, err = vectorMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.ModifiedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.CreatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.UpdatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Enriched, n1, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	return v, n, nil
}

func (itemMUS) Size(v Item) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.SourcePath)
	size += varint.Int.Size(int(v.Kind))
	size += ord.String.Size(v.Hash)
	size += ord.String.Size(v.Title)
	size += stringsMUS.Size(v.Tags)
	size += ord.String.Size(v.Summary)
	size += vectorMUS.Size(v.MetaVector)
	size += sizeTime(v.ModifiedAt)
	size += sizeTime(v.CreatedAt)
	size += sizeTime(v.UpdatedAt)
	size += ord.Bool.Size(v.Enriched)
	return size
}

func (itemMUS) Skip(bs []byte) (n int, err error) {
	skippers := []func([]byte) (int, error){
		IDMUS.Skip,
		ord.String.Skip, // SourcePath
		varint.Int.Skip, // Kind
		ord.String.Skip, // Hash
		ord.String.Skip, // Title
		stringsMUS.Skip, // Tags
		ord.String.Skip, // Summary
		vectorMUS.Skip,  // MetaVector
		skipTime,        // ModifiedAt
		skipTime,        // CreatedAt
		skipTime,        // UpdatedAt
		ord.Bool.Skip,   // Enriched
	}
	for _, skip := range skippers {
		n1, err := skip(bs[n:])
		n += n1
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

type fragmentMUS struct{}

func (fragmentMUS) Marshal(v Fragment, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.ItemId, bs[n:])
	n += varint.Int.Marshal(v.Seq, bs[n:])
	n += ord.String.Marshal(v.Body, bs[n:])
	n += vectorMUS.Marshal(v.Vector, bs[n:])
	return n
}

func (fragmentMUS) Unmarshal(bs []byte) (v Fragment, n int, err error) {
	var n1 int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.ItemId, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Seq, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Body, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Vector, n1, err = vectorMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	return v, n, nil
}

func (fragmentMUS) Size(v Fragment) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.ItemId)
	size += varint.Int.Size(v.Seq)
	size += ord.String.Size(v.Body)
	size += vectorMUS.Size(v.Vector)
	return size
}

func (fragmentMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	if n, err = IDMUS.Skip(bs); err != nil {
		return
	}
	if n1, err = IDMUS.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	if n1, err = varint.Int.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	if n1, err = ord.String.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	if n1, err = vectorMUS.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	return n + n1, nil
}

type connectionMUS struct{}

func (connectionMUS) Marshal(v Connection, bs []byte) (n int) {
	n = IDMUS.Marshal(v.A, bs)
	n += IDMUS.Marshal(v.B, bs[n:])
	n += raw.Float32.Marshal(v.Score, bs[n:])
	n += marshalTime(v.UpdatedAt, bs[n:])
	return n
}

func (connectionMUS) Unmarshal(bs []byte) (v Connection, n int, err error) {
	var n1 int
	if v.A, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.B, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Score, n1, err = raw.Float32.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.UpdatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	return v, n, nil
}

func (connectionMUS) Size(v Connection) int {
	return IDMUS.Size(v.A) + IDMUS.Size(v.B) + raw.Float32.Size(v.Score) + sizeTime(v.UpdatedAt)
}

func (connectionMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	if n, err = IDMUS.Skip(bs); err != nil {
		return
	}
	if n1, err = IDMUS.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	if n1, err = raw.Float32.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	if n1, err = skipTime(bs[n:]); err != nil {
		return n + n1, err
	}
	return n + n1, nil
}

type sessionEntryMUS struct{}

func (sessionEntryMUS) Marshal(v SessionEntry, bs []byte) (n int) {
	n = IDMUS.Marshal(v.ItemId, bs)
	n += marshalTime(v.ViewedAt, bs[n:])
	return n
}

func (sessionEntryMUS) Unmarshal(bs []byte) (v SessionEntry, n int, err error) {
	var n1 int
	if v.ItemId, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.ViewedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	return v, n, nil
}

func (sessionEntryMUS) Size(v SessionEntry) int {
	return IDMUS.Size(v.ItemId) + sizeTime(v.ViewedAt)
}

func (sessionEntryMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	if n, err = IDMUS.Skip(bs); err != nil {
		return
	}
	if n1, err = skipTime(bs[n:]); err != nil {
		return n + n1, err
	}
	return n + n1, nil
}
