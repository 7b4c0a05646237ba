package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MegaGrindStone/asisten-kepsek/internal/models"
	bolt "go.etcd.io/bbolt"
)

// BoltCallLog keeps a log of model calls in a BoltDB file. Only call metadata is stored; conversations
// themselves live in memory and end with their session.
type BoltCallLog struct {
	db *bolt.DB
}

var callsBucket = []byte("calls")

// NewBoltCallLog opens or creates the BoltDB file at path and makes sure the calls bucket exists. The
// database file is created with 0600 permissions if it doesn't exist.
func NewBoltCallLog(path string) (BoltCallLog, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return BoltCallLog{}, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(callsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return BoltCallLog{}, fmt.Errorf("failed to create calls bucket: %w", err)
	}

	return BoltCallLog{db: db}, nil
}

// AddCall stores rec. The key combines a zero padded sequence number with the record's ID, so keys sort
// in insertion order. It returns the stored ID.
func (b BoltCallLog) AddCall(_ context.Context, rec models.CallRecord) (string, error) {
	var newID string
	err := b.db.Update(func(tx *bolt.Tx) error {
		bk := tx.Bucket(callsBucket)

		seq, err := bk.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to get next sequence: %w", err)
		}
		newID = fmt.Sprintf("%020d-%s", seq, rec.ID)
		rec.ID = newID

		v, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal call record: %w", err)
		}

		return bk.Put([]byte(newID), v)
	})

	return newID, err
}

// Calls returns up to limit records, most recent first. A limit of zero or less returns every record.
func (b BoltCallLog) Calls(_ context.Context, limit int) ([]models.CallRecord, error) {
	var calls []models.CallRecord
	err := b.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(callsBucket).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(calls) >= limit {
				break
			}
			var rec models.CallRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("failed to unmarshal call record: %w", err)
			}
			calls = append(calls, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return calls, nil
}

// Close closes the underlying database.
func (b BoltCallLog) Close() error {
	return b.db.Close()
}
