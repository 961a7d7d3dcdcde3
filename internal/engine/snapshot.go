package engine

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"

	"github.com/nullmove/chesscore/internal/board"
)

// SnapshotStore persists a TranspositionTable image to an on-disk badger
// database. The in-memory table is still the only thing the search hot
// path touches and is still sized up-front from a fixed memory budget
// (it never grows); SnapshotStore is an additive durability layer on top
// of it, for long perft/bench sessions that want to resume a warmed-up
// table across process restarts rather than rebuild it from scratch.
type SnapshotStore struct {
	db *badger.DB
}

// OpenSnapshotStore opens (creating if absent) a badger database at dir.
func OpenSnapshotStore(dir string) (*SnapshotStore, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &SnapshotStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

const ttRecordPayloadSize = 14

func encodeTTEntry(e TTEntry) []byte {
	buf := make([]byte, ttRecordPayloadSize)
	binary.BigEndian.PutUint32(buf[0:4], e.Key)
	binary.BigEndian.PutUint32(buf[4:8], uint32(e.BestMove))
	binary.BigEndian.PutUint16(buf[8:10], uint16(e.Score))
	buf[10] = byte(e.Depth)
	buf[11] = byte(e.Flag)
	buf[12] = e.Age
	if e.IsPV {
		buf[13] = 1
	}
	return buf
}

func decodeTTEntry(buf []byte) TTEntry {
	return TTEntry{
		Key:      binary.BigEndian.Uint32(buf[0:4]),
		BestMove: board.PackedMove(binary.BigEndian.Uint32(buf[4:8])),
		Score:    int16(binary.BigEndian.Uint16(buf[8:10])),
		Depth:    int8(buf[10]),
		Flag:     TTFlag(buf[11]),
		Age:      buf[12],
		IsPV:     buf[13] != 0,
	}
}

func snapshotKey(name string, idx uint64) []byte {
	key := make([]byte, len(name)+1+8)
	n := copy(key, name)
	key[n] = '/'
	binary.BigEndian.PutUint64(key[n+1:], idx)
	return key
}

// Save writes every occupied slot of tt into the store under name, via a
// badger write batch (the table can hold millions of entries, well past
// what a single transaction should carry). Each record is checksummed
// with xxhash so Load can detect and discard a truncated or bit-rotted
// page rather than trust it.
func (s *SnapshotStore) Save(name string, tt *TranspositionTable) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	var saveErr error
	tt.ForEach(func(idx uint64, e TTEntry) bool {
		payload := encodeTTEntry(e)
		sum := xxhash.Sum64(payload)
		record := make([]byte, len(payload)+8)
		copy(record, payload)
		binary.BigEndian.PutUint64(record[len(payload):], sum)

		if err := wb.Set(snapshotKey(name, idx), record); err != nil {
			saveErr = err
			return false
		}
		return true
	})
	if saveErr != nil {
		return saveErr
	}
	return wb.Flush()
}

// Load restores tt's entries from a previously Saved image and returns
// the number of slots restored. A record whose checksum fails to verify
// is skipped rather than aborting the whole load.
func (s *SnapshotStore) Load(name string, tt *TranspositionTable) (int, error) {
	prefix := append([]byte(name), '/')
	restored := 0

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			idx := binary.BigEndian.Uint64(key[len(prefix):])

			err := it.Item().Value(func(val []byte) error {
				if len(val) != ttRecordPayloadSize+8 {
					return nil
				}
				payload := val[:ttRecordPayloadSize]
				sum := binary.BigEndian.Uint64(val[ttRecordPayloadSize:])
				if xxhash.Sum64(payload) != sum {
					return nil
				}
				tt.RestoreEntry(idx, decodeTTEntry(payload))
				restored++
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	return restored, err
}
