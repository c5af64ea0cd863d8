package indexer

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

const snapshotVersion = 1

type snapshot struct {
	Version int                 `msgpack:"v"`
	Terms   map[string][]string `msgpack:"terms"`
}

// MarshalBinary encodes the index as an opaque blob.
func (idx *Indexer) MarshalBinary() ([]byte, error) {
	data, err := msgpack.Marshal(snapshot{Version: snapshotVersion, Terms: idx.filenameToTerms})
	if err != nil {
		return nil, fmt.Errorf("encode term index: %w", err)
	}
	return data, nil
}

// UnmarshalBinary replaces the index content with a blob produced by
// MarshalBinary.
func (idx *Indexer) UnmarshalBinary(data []byte) error {
	var snap snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode term index: %w", err)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("decode term index: unsupported version %d", snap.Version)
	}
	idx.termToFilenames = make(map[string]Set)
	idx.filenameToTerms = make(map[string][]string, len(snap.Terms))
	for filename, terms := range snap.Terms {
		idx.filenameToTerms[filename] = terms
		for _, term := range terms {
			idx.addToBucket(term, filename)
		}
	}
	return nil
}

// Retain drops every indexed filename not in keep. Used after loading a
// persisted blob to forget videos deleted since it was written.
func (idx *Indexer) Retain(keep Set) int {
	dropped := 0
	for filename := range idx.filenameToTerms {
		if _, ok := keep[filename]; !ok {
			idx.RemoveFilename(filename)
			dropped++
		}
	}
	return dropped
}
