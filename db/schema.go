// ABOUTME: Database schema definitions
// ABOUTME: Creates the contacts and work_locations tables
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS contacts (
	id TEXT PRIMARY KEY,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL DEFAULT '',
	job_title TEXT NOT NULL DEFAULT '',
	job_titles TEXT,
	phone TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	is_favorite INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_contacts_name ON contacts(last_name, first_name);
CREATE INDEX IF NOT EXISTS idx_contacts_phone ON contacts(phone);

CREATE TABLE IF NOT EXISTS work_locations (
	contact_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	country TEXT NOT NULL,
	region TEXT NOT NULL DEFAULT '',
	is_local_resident INTEGER NOT NULL DEFAULT 0,
	has_vehicle INTEGER NOT NULL DEFAULT 0,
	is_housed INTEGER NOT NULL DEFAULT 0,
	is_primary INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (contact_id, position),
	FOREIGN KEY (contact_id) REFERENCES contacts(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_work_locations_country ON work_locations(country, region);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
