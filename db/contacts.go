// ABOUTME: Contact repository backed by SQLite
// ABOUTME: Handles CRUD, search and the name+phone duplicate lookup
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/mycrew/mycrew/models"
)

// ContactsRepository provides CRUD operations for contacts and their work locations.
type ContactsRepository struct {
	db *sql.DB
}

// NewContactsRepository wraps an open database.
func NewContactsRepository(db *sql.DB) *ContactsRepository {
	return &ContactsRepository{db: db}
}

// Open opens (or creates) the database at path and returns a repository over it.
func Open(path string) (*ContactsRepository, error) {
	database, err := OpenDatabase(path)
	if err != nil {
		return nil, err
	}
	return NewContactsRepository(database), nil
}

func (r *ContactsRepository) Close() error {
	return r.db.Close()
}

const contactColumns = `id, first_name, last_name, job_title, job_titles, phone, email, notes, is_favorite, created_at, updated_at`

// Create stores a new contact and returns its id.
func (r *ContactsRepository) Create(ctx context.Context, contact *models.Contact) (string, error) {
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

	titles, err := encodeTitles(contact.JobTitles)
	if err != nil {
		return "", err
	}

	err = r.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO contacts (`+contactColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, contact.ID, contact.FirstName, contact.LastName, contact.JobTitle, titles,
			contact.Phone, contact.Email, contact.Notes, contact.IsFavorite, contact.CreatedAt, contact.UpdatedAt)
		var sqlErr sqlite3.Error
		if errors.As(err, &sqlErr) && sqlErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return fmt.Errorf("%w: %s", models.ErrDuplicateID, contact.ID)
		}
		if err != nil {
			return fmt.Errorf("failed to insert contact: %w", err)
		}
		return writeLocations(ctx, tx, contact.ID, contact.Locations)
	})
	if err != nil {
		return "", err
	}
	return contact.ID, nil
}

// Get returns the contact with id, or models.ErrContactNotFound.
func (r *ContactsRepository) Get(ctx context.Context, id string) (*models.Contact, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id)
	contact, err := scanContact(row)
	if err == sql.ErrNoRows {
		return nil, models.ErrContactNotFound
	}
	if err != nil {
		return nil, err
	}

	locations, err := r.loadLocations(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	contact.Locations = locations[id]
	return contact, nil
}

// GetAll returns every contact ordered by last then first name.
func (r *ContactsRepository) GetAll(ctx context.Context) ([]models.Contact, error) {
	return r.query(ctx, `SELECT `+contactColumns+` FROM contacts ORDER BY last_name, first_name`)
}

// Search matches names, titles, phone and email. An empty query lists everything.
func (r *ContactsRepository) Search(ctx context.Context, query string, limit int) ([]models.Contact, error) {
	if limit <= 0 {
		limit = 50
	}
	if query == "" {
		return r.query(ctx, `SELECT `+contactColumns+` FROM contacts ORDER BY last_name, first_name LIMIT ?`, limit)
	}

	pattern := "%" + fold(query) + "%"
	return r.query(ctx, `
		SELECT `+contactColumns+` FROM contacts
		WHERE fold(first_name) LIKE ? OR fold(last_name) LIKE ? OR fold(job_titles) LIKE ?
			OR fold(email) LIKE ? OR phone LIKE ?
			OR id IN (SELECT contact_id FROM work_locations WHERE fold(country) LIKE ? OR fold(region) LIKE ?)
		ORDER BY last_name, first_name
		LIMIT ?
	`, pattern, pattern, pattern, pattern, pattern, pattern, pattern, limit)
}

// FindByNameAndPhone returns the contact whose full name and phone match, or
// nil when there is none. Names compare case-insensitively and phones ignore
// separators.
func (r *ContactsRepository) FindByNameAndPhone(ctx context.Context, fullName, phone string) (*models.Contact, error) {
	candidates, err := r.query(ctx, `
		SELECT `+contactColumns+` FROM contacts
		WHERE fold(TRIM(TRIM(first_name) || ' ' || TRIM(last_name))) = ?
		ORDER BY created_at
	`, fold(strings.TrimSpace(fullName)))
	if err != nil {
		return nil, err
	}

	want := models.NormalizePhone(phone)
	for i := range candidates {
		if models.NormalizePhone(candidates[i].Phone) == want {
			return &candidates[i], nil
		}
	}
	return nil, nil
}

// Update overwrites a stored contact, replacing its location list.
func (r *ContactsRepository) Update(ctx context.Context, contact *models.Contact) error {
	if contact == nil || contact.ID == "" {
		return fmt.Errorf("contact id is required")
	}
	contact.NormalizeJobTitles()
	if err := contact.Validate(); err != nil {
		return err
	}
	contact.UpdatedAt = time.Now().UTC()

	titles, err := encodeTitles(contact.JobTitles)
	if err != nil {
		return err
	}

	return r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE contacts
			SET first_name = ?, last_name = ?, job_title = ?, job_titles = ?, phone = ?, email = ?,
				notes = ?, is_favorite = ?, updated_at = ?
			WHERE id = ?
		`, contact.FirstName, contact.LastName, contact.JobTitle, titles, contact.Phone, contact.Email,
			contact.Notes, contact.IsFavorite, contact.UpdatedAt, contact.ID)
		if err != nil {
			return fmt.Errorf("failed to update contact: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return models.ErrContactNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM work_locations WHERE contact_id = ?`, contact.ID); err != nil {
			return fmt.Errorf("failed to clear locations: %w", err)
		}
		return writeLocations(ctx, tx, contact.ID, contact.Locations)
	})
}

// SetFavorite flips the favorite flag without touching the rest of the record.
func (r *ContactsRepository) SetFavorite(ctx context.Context, id string, favorite bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE contacts SET is_favorite = ?, updated_at = ? WHERE id = ?`,
		favorite, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrContactNotFound
	}
	return nil
}

func (r *ContactsRepository) Delete(ctx context.Context, id string) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM work_locations WHERE contact_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete locations: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete contact: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return models.ErrContactNotFound
		}
		return nil
	})
}

func (r *ContactsRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // Safe even after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *ContactsRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.Contact, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []models.Contact
	var ids []string
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *c)
		ids = append(ids, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(contacts) == 0 {
		return contacts, nil
	}

	locations, err := r.loadLocations(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range contacts {
		contacts[i].Locations = locations[contacts[i].ID]
	}
	return contacts, nil
}

func (r *ContactsRepository) loadLocations(ctx context.Context, ids []string) (map[string][]models.WorkLocation, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT contact_id, country, region, is_local_resident, has_vehicle, is_housed, is_primary
		FROM work_locations
		WHERE contact_id IN (`+placeholders+`)
		ORDER BY contact_id, position
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]models.WorkLocation, len(ids))
	for rows.Next() {
		var contactID string
		var l models.WorkLocation
		if err := rows.Scan(&contactID, &l.Country, &l.Region, &l.IsLocalResident, &l.HasVehicle, &l.IsHoused, &l.IsPrimary); err != nil {
			return nil, err
		}
		result[contactID] = append(result[contactID], l)
	}
	return result, rows.Err()
}

func writeLocations(ctx context.Context, tx *sql.Tx, contactID string, locations []models.WorkLocation) error {
	for i, l := range locations {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO work_locations (contact_id, position, country, region, is_local_resident, has_vehicle, is_housed, is_primary)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, contactID, i, l.Country, l.Region, l.IsLocalResident, l.HasVehicle, l.IsHoused, l.IsPrimary)
		if err != nil {
			return fmt.Errorf("failed to insert location %d: %w", i, err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanContact(row rowScanner) (*models.Contact, error) {
	c := &models.Contact{}
	var titles sql.NullString

	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.JobTitle, &titles, &c.Phone, &c.Email,
		&c.Notes, &c.IsFavorite, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if titles.Valid && titles.String != "" {
		if err := json.Unmarshal([]byte(titles.String), &c.JobTitles); err != nil {
			return nil, fmt.Errorf("invalid job titles for %s: %w", c.ID, err)
		}
	}
	// Rows written before the list column existed only carry job_title.
	c.NormalizeJobTitles()
	return c, nil
}

func encodeTitles(titles []string) (interface{}, error) {
	if len(titles) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(titles)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
