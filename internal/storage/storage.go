// Package storage persists per-user voice preferences on top of the JSON
// datastore.
package storage

import (
	"encoding/json"
	"fmt"

	"github.com/keshon/parrot/datastore"
)

const userKeyPrefix = "user:"

// UserRecord is one user's voice preferences.
type UserRecord struct {
	Language   string `json:"language"`
	Voice      string `json:"voice"`
	TTSEnabled bool   `json:"tts_enabled"`
}

type Storage struct {
	ds *datastore.DataStore
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// GetUser returns the record for userID; ok is false when none exists.
func (s *Storage) GetUser(userID string) (UserRecord, bool, error) {
	data, exists := s.ds.Get(userKeyPrefix + userID)
	if !exists {
		return UserRecord{}, false, nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return UserRecord{}, false, fmt.Errorf("error marshalling data: %w", err)
	}

	var record UserRecord
	if err := json.Unmarshal(jsonData, &record); err != nil {
		return UserRecord{}, false, fmt.Errorf("error unmarshalling to UserRecord: %w", err)
	}
	return record, true, nil
}

// SetUser stores the record for userID.
func (s *Storage) SetUser(userID string, record UserRecord) error {
	s.ds.Add(userKeyPrefix+userID, record)
	return nil
}

// TTSEnabled reports whether userID has text-to-speech enabled. Unknown
// users are disabled.
func (s *Storage) TTSEnabled(userID string) bool {
	record, ok, err := s.GetUser(userID)
	if err != nil || !ok {
		return false
	}
	return record.TTSEnabled
}
