package store

import (
	"encoding/binary"
	"encoding/json"

	bolt "go.etcd.io/bbolt"

	. "github.com/iarwain/r3/pkg/store/storedefs"
)

const bucketRun = "run"

func init() {
	initDB["initialize run history table"] = func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketRun))
		return err
	}
}

// NextRunSeq returns the next sequence number of the run history.
func (s *dbStore) NextRunSeq() (int, error) {
	var seq uint64
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketRun))
		seq = b.Sequence() + 1
		return nil
	})
	return int(seq), err
}

// AddRun adds a new run to the run history. The sequence number of the run is
// assigned by the store and returned; the Seq field of the argument is
// ignored.
func (s *dbStore) AddRun(run Run) (int, error) {
	s.waits.Add(1)
	defer s.waits.Done()
	var seq uint64
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketRun))
		var err error
		seq, err = b.NextSequence()
		if err != nil {
			return err
		}
		run.Seq = int(seq)
		data, err := json.Marshal(run)
		if err != nil {
			return err
		}
		return b.Put(marshalSeq(seq), data)
	})
	return int(seq), err
}

// DelRun deletes a run with the given sequence number.
func (s *dbStore) DelRun(seq int) error {
	s.waits.Add(1)
	defer s.waits.Done()
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketRun))
		return b.Delete(marshalSeq(uint64(seq)))
	})
}

// Run queries the run with the specified sequence number.
func (s *dbStore) Run(seq int) (Run, error) {
	var run Run
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketRun))
		v := b.Get(marshalSeq(uint64(seq)))
		if v == nil {
			return ErrNoMatchingRun
		}
		return json.Unmarshal(v, &run)
	})
	return run, err
}

// Runs returns all the runs within the specified range.
func (s *dbStore) Runs(from, upto int) ([]Run, error) {
	var runs []Run
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketRun))
		c := b.Cursor()
		for k, v := c.Seek(marshalSeq(uint64(from))); k != nil && unmarshalSeq(k) < uint64(upto); k, v = c.Next() {
			var run Run
			if err := json.Unmarshal(v, &run); err != nil {
				return err
			}
			runs = append(runs, run)
		}
		return nil
	})
	return runs, err
}

func marshalSeq(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

func unmarshalSeq(key []byte) uint64 {
	return binary.BigEndian.Uint64(key)
}
