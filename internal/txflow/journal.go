package txflow

import (
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/ugorji/go/codec"
	"go.uber.org/zap"
)

// Record is one journaled submission. Records outlive the process so a
// transaction the client stopped watching can be reconciled later.
type Record struct {
	Hash        string `codec:"hash"`
	Account     string `codec:"account"`
	Contract    string `codec:"contract"`
	Method      string `codec:"method"`
	SubmittedAt int64  `codec:"submitted_at"`
	Attempts    uint32 `codec:"attempts"`
	LastStatus  string `codec:"last_status"`
}

// SubmittedTime returns the submission instant.
func (r Record) SubmittedTime() time.Time { return time.Unix(r.SubmittedAt, 0).UTC() }

// Journal persists submitted-transaction records in a local pebble
// store keyed by transaction hash, msgpack-encoded. Terminal outcomes
// delete the record; unconfirmed ones keep it for reconciliation.
type Journal struct {
	db  *pebble.DB
	mh  codec.MsgpackHandle
	log *zap.Logger
}

// OpenJournal opens (or creates) the journal at path.
func OpenJournal(path string, log *zap.Logger) (*Journal, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open journal at %s: %w", path, err)
	}
	return &Journal{db: db, log: log}, nil
}

// Close flushes and closes the underlying store.
func (j *Journal) Close() error { return j.db.Close() }

// Put writes or overwrites the record for its hash.
func (j *Journal) Put(rec Record) error {
	var buf []byte
	if err := codec.NewEncoderBytes(&buf, &j.mh).Encode(rec); err != nil {
		return fmt.Errorf("encode journal record: %w", err)
	}
	if err := j.db.Set([]byte(rec.Hash), buf, pebble.Sync); err != nil {
		return fmt.Errorf("write journal record: %w", err)
	}
	return nil
}

// Delete removes the record for hash, if any.
func (j *Journal) Delete(hash string) error {
	if err := j.db.Delete([]byte(hash), pebble.Sync); err != nil {
		return fmt.Errorf("delete journal record: %w", err)
	}
	return nil
}

// Pending returns every journaled record, oldest submission first not
// guaranteed; iteration order is by hash.
func (j *Journal) Pending() ([]Record, error) {
	iter, err := j.db.NewIter(nil)
	if err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}
	defer iter.Close()

	var out []Record
	for iter.First(); iter.Valid(); iter.Next() {
		var rec Record
		if err := codec.NewDecoderBytes(iter.Value(), &j.mh).Decode(&rec); err != nil {
			// A corrupt record must not block reconciliation of the rest.
			j.log.Warn("skipping corrupt journal record", zap.ByteString("key", iter.Key()), zap.Error(err))
			continue
		}
		out = append(out, rec)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}
	return out, nil
}
