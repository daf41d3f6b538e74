// Package journal is the append-only log of accepted transactions. Replaying it through the
// same handlers rebuilds every ledger.
package journal

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/nbd-wtf/go-nostr"
	bolt "go.etcd.io/bbolt"
)

var (
	eventsBucket = []byte("events")
	idsBucket    = []byte("ids")
)

var ErrDuplicate = errors.New("transaction is already in the journal")

type Journal struct {
	db *bolt.DB
}

func Open(path string) (*Journal, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(eventsBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(idsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Append stores e after every transaction already in the journal and returns its sequence
// number, starting at 1.
func (j *Journal) Append(e nostr.Event) (seq uint64, err error) {
	body, err := json.Marshal(e)
	if err != nil {
		return 0, err
	}
	err = j.db.Update(func(tx *bolt.Tx) error {
		ids := tx.Bucket(idsBucket)
		if ids.Get([]byte(e.ID)) != nil {
			return fmt.Errorf("%s: %w", e.ID, ErrDuplicate)
		}
		events := tx.Bucket(eventsBucket)
		if seq, err = events.NextSequence(); err != nil {
			return err
		}
		if err := events.Put(key(seq), body); err != nil {
			return err
		}
		return ids.Put([]byte(e.ID), key(seq))
	})
	return
}

// Contains reports whether a transaction with id was appended.
func (j *Journal) Contains(id string) (found bool) {
	_ = j.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(idsBucket).Get([]byte(id)) != nil
		return nil
	})
	return
}

func (j *Journal) Len() (n int, err error) {
	err = j.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(eventsBucket).Stats().KeyN
		return nil
	})
	return
}

// Replay calls fn for every transaction in append order. A failing transaction does not stop
// the replay, all failures are returned together.
func (j *Journal) Replay(fn func(seq uint64, e nostr.Event) error) error {
	var result *multierror.Error
	err := j.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(eventsBucket).ForEach(func(k, v []byte) error {
			seq := binary.BigEndian.Uint64(k)
			var e nostr.Event
			if err := json.Unmarshal(v, &e); err != nil {
				result = multierror.Append(result, fmt.Errorf("journal entry %d: %w", seq, err))
				return nil
			}
			if err := fn(seq, e); err != nil {
				result = multierror.Append(result, fmt.Errorf("journal entry %d (%s): %w", seq, e.ID, err))
			}
			return nil
		})
	})
	if err != nil {
		return err
	}
	return result.ErrorOrNil()
}

func key(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}
