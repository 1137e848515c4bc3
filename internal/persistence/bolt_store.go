package persistence

import (
	"bytes"
	"encoding/gob"

	bolt "go.etcd.io/bbolt"
)

var instancesBucket = []byte("instances")

// BoltInstanceStore is an InstanceStore backed by a bbolt file, giving
// embedded durability without a SQL dependency.
type BoltInstanceStore struct {
	db *bolt.DB
}

var _ InstanceStore = (*BoltInstanceStore)(nil)

// NewBoltInstanceStore creates the instances bucket if needed and returns a
// new BoltInstanceStore. The caller owns the *bolt.DB lifecycle.
func NewBoltInstanceStore(db *bolt.DB) (*BoltInstanceStore, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(instancesBucket)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &BoltInstanceStore{db: db}, nil
}

func encodeRecord(rec *InstanceRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeRecord(data []byte) (*InstanceRecord, error) {
	var rec InstanceRecord
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *BoltInstanceStore) SaveInstance(rec *InstanceRecord) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(instancesBucket)
		if b.Get([]byte(rec.ID)) != nil {
			return ErrInstanceExists
		}
		return b.Put([]byte(rec.ID), data)
	})
}

func (s *BoltInstanceStore) UpdateInstance(rec *InstanceRecord) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(instancesBucket)
		if b.Get([]byte(rec.ID)) == nil {
			return ErrInstanceNotFound
		}
		return b.Put([]byte(rec.ID), data)
	})
}

func (s *BoltInstanceStore) GetInstance(id string) (*InstanceRecord, error) {
	var rec *InstanceRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(instancesBucket).Get([]byte(id))
		if data == nil {
			return ErrInstanceNotFound
		}
		var err error
		rec, err = decodeRecord(data)
		return err
	})
	return rec, err
}

func (s *BoltInstanceStore) ListInstances(filter InstanceFilter) ([]*InstanceRecord, error) {
	var out []*InstanceRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		// Bolt iterates keys in byte order, so results are already sorted by id.
		return tx.Bucket(instancesBucket).ForEach(func(k, v []byte) error {
			rec, err := decodeRecord(v)
			if err != nil {
				return err
			}
			if filter.matches(rec) {
				out = append(out, rec)
			}
			return nil
		})
	})
	return out, err
}
