package schema

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// snapshotVersion is bumped whenever the encoded layout changes so stale
// cache entries decode as errors instead of wrong data.
const snapshotVersion = 1

type snapshot struct {
	Version int              `msgpack:"v"`
	Records []snapshotRecord `msgpack:"records"`
}

type snapshotRecord struct {
	Name       string           `msgpack:"name,omitempty"`
	Key        string           `msgpack:"key,omitempty"`
	UID        string           `msgpack:"uid,omitempty"`
	Attributes []NamedAttribute `msgpack:"attributes"`
}

// EncodeRecords serializes provider records into a compact msgpack
// snapshot. Attribute order is preserved.
func EncodeRecords(records []Record) ([]byte, error) {
	s := snapshot{Version: snapshotVersion, Records: make([]snapshotRecord, len(records))}
	for i, r := range records {
		sr := snapshotRecord{Name: r.Name, Key: r.Key, UID: r.UID}
		r.Each(func(name string, a RawAttribute) {
			sr.Attributes = append(sr.Attributes, NamedAttribute{Name: name, Attr: a})
		})
		s.Records[i] = sr
	}
	return msgpack.Marshal(&s)
}

// DecodeRecords is the inverse of [EncodeRecords].
func DecodeRecords(data []byte) ([]Record, error) {
	var s snapshot
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.Version != snapshotVersion {
		return nil, fmt.Errorf("decode snapshot: version %d, want %d", s.Version, snapshotVersion)
	}
	out := make([]Record, len(s.Records))
	for i, sr := range s.Records {
		m := orderedmap.New[string, RawAttribute](len(sr.Attributes))
		for _, a := range sr.Attributes {
			m.Set(a.Name, a.Attr)
		}
		out[i] = Record{Name: sr.Name, Key: sr.Key, UID: sr.UID, Attributes: m}
	}
	return out, nil
}
