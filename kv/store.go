// ABOUTME: Contact store backed by an embedded BadgerDB
// ABOUTME: Keeps each contact as JSON under contact/<id>

package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"

	"github.com/mycrew/mycrew/models"
)

const contactPrefix = "contact/"

// Store is a Badger-backed contact store. The mutex serializes
// read-modify-write sequences such as SetFavorite.
type Store struct {
	db *badger.DB
	mu sync.RWMutex
}

// Open opens a store in dir. An empty dir opens an in-memory store.
func Open(dir string) (*Store, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
		opts = badger.DefaultOptions(dir)
	}

	db, err := badger.Open(opts.WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func key(id string) []byte {
	return []byte(contactPrefix + id)
}

func (s *Store) Create(ctx context.Context, contact *models.Contact) (string, error) {
	if contact == nil {
		return "", fmt.Errorf("contact is nil")
	}
	contact.NormalizeJobTitles()
	if err := contact.Validate(); err != nil {
		return "", err
	}
	if contact.ID == "" {
		contact.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	contact.CreatedAt = now
	contact.UpdatedAt = now

	data, err := json.Marshal(contact)
	if err != nil {
		return "", fmt.Errorf("failed to encode contact: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	err = s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key(contact.ID))
		if err == nil {
			return fmt.Errorf("%w: %s", models.ErrDuplicateID, contact.ID)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key(contact.ID), data)
	})
	if err != nil {
		return "", err
	}
	return contact.ID, nil
}

func (s *Store) Get(ctx context.Context, id string) (*models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(id)
}

func (s *Store) get(id string) (*models.Contact, error) {
	var contact models.Contact
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &contact)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, models.ErrContactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read contact %s: %w", id, err)
	}
	contact.NormalizeJobTitles()
	return &contact, nil
}

func (s *Store) put(contact *models.Contact) error {
	data, err := json.Marshal(contact)
	if err != nil {
		return fmt.Errorf("failed to encode contact: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(contact.ID), data)
	})
}

// GetAll returns every contact ordered by last then first name.
func (s *Store) GetAll(ctx context.Context) ([]models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var contacts []models.Contact
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(contactPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var c models.Contact
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &c)
			})
			if err != nil {
				return fmt.Errorf("failed to decode %s: %w", it.Item().Key(), err)
			}
			c.NormalizeJobTitles()
			contacts = append(contacts, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(contacts, func(i, j int) bool {
		a, b := contacts[i], contacts[j]
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		return a.FirstName < b.FirstName
	})
	return contacts, nil
}

// Search does a case-insensitive substring scan over names, titles, contact
// details and locations.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]models.Contact, error) {
	if limit <= 0 {
		limit = 50
	}
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	var results []models.Contact
	for _, c := range all {
		if q == "" || matches(c, q) {
			results = append(results, c)
			if len(results) == limit {
				break
			}
		}
	}
	return results, nil
}

func matches(c models.Contact, q string) bool {
	fields := []string{c.FirstName, c.LastName, c.Email, c.Phone}
	fields = append(fields, c.JobTitles...)
	for _, l := range c.Locations {
		fields = append(fields, l.Country, l.Region)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// FindByNameAndPhone returns the first contact with the same full name and
// phone, or nil.
func (s *Store) FindByNameAndPhone(ctx context.Context, fullName, phone string) (*models.Contact, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(fullName)
	want := models.NormalizePhone(phone)
	for i := range all {
		if strings.EqualFold(all[i].FullName(), name) && models.NormalizePhone(all[i].Phone) == want {
			return &all[i], nil
		}
	}
	return nil, nil
}

func (s *Store) Update(ctx context.Context, contact *models.Contact) error {
	if contact == nil || contact.ID == "" {
		return fmt.Errorf("contact id is required")
	}
	contact.NormalizeJobTitles()
	if err := contact.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.get(contact.ID)
	if err != nil {
		return err
	}
	contact.CreatedAt = existing.CreatedAt
	contact.UpdatedAt = time.Now().UTC()
	return s.put(contact)
}

func (s *Store) SetFavorite(ctx context.Context, id string, favorite bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.get(id)
	if err != nil {
		return err
	}
	existing.IsFavorite = favorite
	existing.UpdatedAt = time.Now().UTC()
	return s.put(existing)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.get(id); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(id))
	})
}

// Reset drops every stored contact.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.DropAll()
}
