package database

type migration struct {
	version int
	sql     string
}

// migrations must be numbered sequentially from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS contacts (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	book       TEXT NOT NULL,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL,
	firstname  TEXT NOT NULL DEFAULT '',
	surname    TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS contact_groups (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	book TEXT NOT NULL,
	name TEXT NOT NULL,
	UNIQUE (book, name)
);

CREATE TABLE IF NOT EXISTS contact_group_members (
	group_id   INTEGER NOT NULL REFERENCES contact_groups(id) ON DELETE CASCADE,
	contact_id INTEGER NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
	PRIMARY KEY (group_id, contact_id)
);

CREATE INDEX IF NOT EXISTS idx_contacts_book_email ON contacts(book, email COLLATE NOCASE);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS user_prefs (
	username   TEXT NOT NULL,
	name       TEXT NOT NULL,
	value      INTEGER NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (username, name)
);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
