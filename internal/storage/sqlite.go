package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/matsen/publist/internal/authors"
	"github.com/matsen/publist/internal/citekey"
	"github.com/matsen/publist/internal/publication"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite publications store.
type DB struct {
	db *sql.DB
}

// citeKeyAttempts bounds the regenerate-and-retry loop when concurrent
// inserts race for the same citation key.
const citeKeyAttempts = 5

// selectPubFields contains the standard field list for SELECT queries.
const selectPubFields = `id, citekey, entry_type, title, authors,
	pub_year, pub_month,
	journal, book_title, publisher, institution,
	volume, number, pages, edition, location, series,
	url, doi, isbn, issn,
	note, keywords, abstract,
	pdf_path, external`

// OpenDB opens or creates the publications database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		-- Main publications table. id doubles as insertion order, which
		-- the citation-key scan depends on, so ids are never reused.
		CREATE TABLE IF NOT EXISTS publications (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			citekey TEXT NOT NULL UNIQUE,
			entry_type TEXT NOT NULL,
			title TEXT NOT NULL,
			authors TEXT NOT NULL,
			pub_year INTEGER NOT NULL,
			pub_month INTEGER NOT NULL DEFAULT 0,
			journal TEXT,
			book_title TEXT,
			publisher TEXT,
			institution TEXT,
			volume TEXT,
			number TEXT,
			pages TEXT,
			edition TEXT,
			location TEXT,
			series TEXT,
			url TEXT,
			doi TEXT,
			isbn TEXT,
			issn TEXT,
			note TEXT,
			keywords TEXT,
			abstract TEXT,
			pdf_path TEXT,
			external INTEGER NOT NULL DEFAULT 0
		);

		-- Index for the sibling query during key generation
		CREATE INDEX IF NOT EXISTS idx_publications_year ON publications(pub_year);

		-- Index for DOI lookups
		CREATE INDEX IF NOT EXISTS idx_publications_doi ON publications(doi) WHERE doi IS NOT NULL AND doi != '';

		-- Full-text search virtual table, kept in sync on every write.
		-- rowid mirrors publications.id.
		CREATE VIRTUAL TABLE IF NOT EXISTS publications_fts USING fts5(
			citekey,
			title,
			authors_text,
			venue,
			abstract,
			keywords
		);
	`

	_, err := db.Exec(schema)
	return err
}

// Insert normalizes, finalizes, and persists a publication. When no
// citation key is supplied one is assigned from the sibling scan; a
// UNIQUE conflict on a generated key (a concurrent insert won the same
// letter) clears the key and regenerates against the changed sibling
// set, a bounded number of times. A conflict on a caller-supplied key
// is returned as-is.
func (d *DB) Insert(p *publication.Publication) error {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return err
	}

	for attempt := 0; attempt < citeKeyAttempts; attempt++ {
		assigned := p.CiteKey == ""
		if err := p.Finalize(d); err != nil {
			return err
		}

		err := d.insertRow(p)
		if err == nil {
			return nil
		}
		if assigned && isCiteKeyConflict(err) {
			p.CiteKey = ""
			continue
		}
		return err
	}

	return fmt.Errorf("inserting publication: citekey still conflicting after %d attempts", citeKeyAttempts)
}

// insertRow writes the publication row and its FTS mirror atomically.
// Sets p.ID from the assigned rowid on success.
func (d *DB) insertRow(p *publication.Publication) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning insert: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO publications (
			citekey, entry_type, title, authors,
			pub_year, pub_month,
			journal, book_title, publisher, institution,
			volume, number, pages, edition, location, series,
			url, doi, isbn, issn,
			note, keywords, abstract,
			pdf_path, external
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, insertArgs(p)...)
	if err != nil {
		return fmt.Errorf("inserting publication: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading insert id: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO publications_fts (rowid, citekey, title, authors_text, venue, abstract, keywords)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, p.CiteKey, p.Title, searchText(p), p.JournalOrBookTitle(), p.Abstract, p.Keywords); err != nil {
		return fmt.Errorf("inserting search row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing insert: %w", err)
	}
	p.ID = id
	return nil
}

// Update rewrites a persisted publication and its FTS mirror.
func (d *DB) Update(p *publication.Publication) error {
	if p.ID == 0 {
		return fmt.Errorf("updating publication: record has no id")
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		return err
	}
	if err := p.Finalize(d); err != nil {
		return err
	}

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning update: %w", err)
	}
	defer tx.Rollback()

	args := append(insertArgs(p), p.ID)
	res, err := tx.Exec(`
		UPDATE publications SET
			citekey = ?, entry_type = ?, title = ?, authors = ?,
			pub_year = ?, pub_month = ?,
			journal = ?, book_title = ?, publisher = ?, institution = ?,
			volume = ?, number = ?, pages = ?, edition = ?, location = ?, series = ?,
			url = ?, doi = ?, isbn = ?, issn = ?,
			note = ?, keywords = ?, abstract = ?,
			pdf_path = ?, external = ?
		WHERE id = ?
	`, args...)
	if err != nil {
		return fmt.Errorf("updating publication %d: %w", p.ID, err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("updating publication %d: no such record", p.ID)
	}

	if _, err := tx.Exec(`DELETE FROM publications_fts WHERE rowid = ?`, p.ID); err != nil {
		return fmt.Errorf("clearing search row: %w", err)
	}
	if _, err := tx.Exec(`
		INSERT INTO publications_fts (rowid, citekey, title, authors_text, venue, abstract, keywords)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.CiteKey, p.Title, searchText(p), p.JournalOrBookTitle(), p.Abstract, p.Keywords); err != nil {
		return fmt.Errorf("rewriting search row: %w", err)
	}

	return tx.Commit()
}

// Delete removes a publication by citation key. Returns false when no
// record has that key. The freed id is never reassigned.
func (d *DB) Delete(citeKey string) (bool, error) {
	var id int64
	err := d.db.QueryRow(`SELECT id FROM publications WHERE citekey = ?`, citeKey).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("finding publication %q: %w", citeKey, err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return false, fmt.Errorf("beginning delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM publications WHERE id = ?`, id); err != nil {
		return false, fmt.Errorf("deleting publication %q: %w", citeKey, err)
	}
	if _, err := tx.Exec(`DELETE FROM publications_fts WHERE rowid = ?`, id); err != nil {
		return false, fmt.Errorf("deleting search row: %w", err)
	}

	return true, tx.Commit()
}

// GetByCiteKey retrieves a publication by its citation key, nil when
// absent.
func (d *DB) GetByCiteKey(citeKey string) (*publication.Publication, error) {
	row := d.db.QueryRow(`SELECT `+selectPubFields+` FROM publications WHERE citekey = ?`, citeKey)
	return scanPublication(row)
}

// GetByID retrieves a publication by its insertion id, nil when absent.
func (d *DB) GetByID(id int64) (*publication.Publication, error) {
	row := d.db.QueryRow(`SELECT `+selectPubFields+` FROM publications WHERE id = ?`, id)
	return scanPublication(row)
}

// GetByDOI retrieves a publication by DOI, nil when absent. The
// argument is canonicalized first, so URL and doi: forms match the
// stored value.
func (d *DB) GetByDOI(doi string) (*publication.Publication, error) {
	doi = publication.NormalizeDOI(doi)
	row := d.db.QueryRow(`SELECT `+selectPubFields+` FROM publications WHERE doi = ?`, doi)
	return scanPublication(row)
}

// SiblingsForKey returns the key-generation candidates for a year and
// surname: every record in that year whose authors text contains the
// surname case-insensitively, ordered by month ascending then insertion
// id ascending. The ordering is the key-stability contract; it is
// deliberately not the display order.
func (d *DB) SiblingsForKey(year int, surname string) ([]citekey.Candidate, error) {
	rows, err := d.db.Query(`
		SELECT id, authors FROM publications
		WHERE pub_year = ? AND instr(lower(authors), lower(?)) > 0
		ORDER BY pub_month ASC, id ASC
	`, year, surname)
	if err != nil {
		return nil, fmt.Errorf("querying key siblings: %w", err)
	}
	defer rows.Close()

	var candidates []citekey.Candidate
	for rows.Next() {
		var id int64
		var rawAuthors string
		if err := rows.Scan(&id, &rawAuthors); err != nil {
			return nil, fmt.Errorf("scanning key sibling: %w", err)
		}

		// Sibling surnames come from the same normalization the record
		// itself went through.
		n := authors.Normalize(rawAuthors)
		sur := ""
		if len(n.List) > 0 {
			sur = authors.Surname(n.List[0])
		}
		candidates = append(candidates, citekey.Candidate{ID: id, Surname: sur})
	}
	return candidates, rows.Err()
}

// RekeyChange records one citation key reassignment.
type RekeyChange struct {
	ID     int64
	OldKey string
	NewKey string
}

// Rekey regenerates citation keys for the cluster containing citeKey:
// every record sharing its year and first-author surname, relettered
// in scan order. The whole cluster moves together because reassigning
// one member's letter can land on a sibling's current key. Returns the
// changes applied; nil when every key was already canonical.
func (d *DB) Rekey(citeKey string) ([]RekeyChange, error) {
	p, err := d.GetByCiteKey(citeKey)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("no publication with citekey %q", citeKey)
	}

	surname := p.FirstAuthorSurname()
	if surname == "" {
		return nil, fmt.Errorf("rekeying %q: %w", citeKey, citekey.ErrInvalidRecordState)
	}

	candidates, err := d.SiblingsForKey(p.Year, surname)
	if err != nil {
		return nil, err
	}

	var changes []RekeyChange
	var members []*publication.Publication
	for _, c := range candidates {
		if c.Surname != surname {
			continue
		}
		key, err := citekey.Generate(surname, p.Year, candidates, c.ID)
		if err != nil {
			return nil, fmt.Errorf("rekeying %q: %w", citeKey, err)
		}
		member, err := d.GetByID(c.ID)
		if err != nil {
			return nil, err
		}
		if member == nil || member.CiteKey == key {
			continue
		}
		changes = append(changes, RekeyChange{ID: c.ID, OldKey: member.CiteKey, NewKey: key})
		member.CiteKey = key
		members = append(members, member)
	}
	if len(changes) == 0 {
		return nil, nil
	}

	tx, err := d.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning rekey: %w", err)
	}
	defer tx.Rollback()

	// Park every moving key first so the unique index never sees a
	// transient collision mid-reassignment.
	for _, ch := range changes {
		if _, err := tx.Exec(`UPDATE publications SET citekey = ? WHERE id = ?`,
			fmt.Sprintf("~rekey-%d", ch.ID), ch.ID); err != nil {
			return nil, fmt.Errorf("parking key for %d: %w", ch.ID, err)
		}
	}
	for i, ch := range changes {
		if _, err := tx.Exec(`UPDATE publications SET citekey = ? WHERE id = ?`, ch.NewKey, ch.ID); err != nil {
			return nil, fmt.Errorf("assigning key %q: %w", ch.NewKey, err)
		}
		m := members[i]
		if _, err := tx.Exec(`DELETE FROM publications_fts WHERE rowid = ?`, m.ID); err != nil {
			return nil, fmt.Errorf("clearing search row: %w", err)
		}
		if _, err := tx.Exec(`
			INSERT INTO publications_fts (rowid, citekey, title, authors_text, venue, abstract, keywords)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, m.ID, m.CiteKey, m.Title, searchText(m), m.JournalOrBookTitle(), m.Abstract, m.Keywords); err != nil {
			return nil, fmt.Errorf("rewriting search row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing rekey: %w", err)
	}

	return changes, nil
}

// ListFilters narrows List output. Zero values mean no filter.
type ListFilters struct {
	Year    int
	Keyword string
}

// List returns publications in display order: year descending, month
// descending, insertion id descending.
func (d *DB) List(filters ListFilters, limit int) ([]publication.Publication, error) {
	query := `SELECT ` + selectPubFields + ` FROM publications WHERE 1=1`
	var args []interface{}

	if filters.Year > 0 {
		query += " AND pub_year = ?"
		args = append(args, filters.Year)
	}
	if filters.Keyword != "" {
		query += " AND instr(lower(keywords), lower(?)) > 0"
		args = append(args, filters.Keyword)
	}

	query += " ORDER BY pub_year DESC, pub_month DESC, id DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing publications: %w", err)
	}
	defer rows.Close()

	return scanPublications(rows)
}

// Search performs a full-text search over citekey, title, authors,
// abstract, and keywords.
func (d *DB) Search(query string, limit int) ([]publication.Publication, error) {
	ftsQuery := prepareFTSQuery(query)

	rows, err := d.db.Query(`
		SELECT `+selectPubFields+`
		FROM publications
		WHERE id IN (SELECT rowid FROM publications_fts WHERE publications_fts MATCH ?)
		ORDER BY pub_year DESC, pub_month DESC, id DESC
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	return scanPublications(rows)
}

// SearchField performs a full-text search on a single field. The
// author field also matches the simplified (ASCII-folded) name forms.
func (d *DB) SearchField(field, value string, limit int) ([]publication.Publication, error) {
	var ftsQuery string

	switch field {
	case "author":
		ftsQuery = "authors_text:" + prepareFTSQuery(value)
	case "title":
		ftsQuery = "title:" + prepareFTSQuery(value)
	case "venue":
		ftsQuery = "venue:" + prepareFTSQuery(value)
	case "keyword":
		ftsQuery = "keywords:" + prepareFTSQuery(value)
	default:
		return nil, fmt.Errorf("unknown search field: %s", field)
	}

	rows, err := d.db.Query(`
		SELECT `+selectPubFields+`
		FROM publications
		WHERE id IN (SELECT rowid FROM publications_fts WHERE publications_fts MATCH ?)
		ORDER BY pub_year DESC, pub_month DESC, id DESC
		LIMIT ?
	`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", field, err)
	}
	defer rows.Close()

	return scanPublications(rows)
}

// Count returns the total number of publications.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM publications").Scan(&count)
	return count, err
}

// isCiteKeyConflict detects the UNIQUE violation raised when two
// records race for the same generated key.
func isCiteKeyConflict(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: publications.citekey")
}

// searchText builds the FTS author text: display names plus simplified
// forms, so "mueller" finds Müller.
func searchText(p *publication.Publication) string {
	parts := make([]string, 0, len(p.AuthorList)+len(p.SimpleAuthors))
	parts = append(parts, p.AuthorList...)
	parts = append(parts, p.SimpleAuthors...)
	return strings.Join(parts, ", ")
}

func insertArgs(p *publication.Publication) []interface{} {
	return []interface{}{
		p.CiteKey, p.Type, p.Title, p.Authors,
		p.Year, p.Month,
		nullableStringValue(p.Journal), nullableStringValue(p.BookTitle),
		nullableStringValue(p.Publisher), nullableStringValue(p.Institution),
		nullableStringValue(p.Volume), nullableStringValue(p.Number),
		nullableStringValue(p.Pages), nullableStringValue(p.Edition),
		nullableStringValue(p.Location), nullableStringValue(p.Series),
		nullableStringValue(p.URL), nullableStringValue(p.DOI),
		nullableStringValue(p.ISBN), nullableStringValue(p.ISSN),
		nullableStringValue(p.Note), nullableStringValue(p.Keywords),
		nullableStringValue(p.Abstract), nullableStringValue(p.PDFPath),
		boolToInt(p.External),
	}
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPublication(s scanner) (*publication.Publication, error) {
	var p publication.Publication
	var journal, bookTitle, publisher, institution sql.NullString
	var volume, number, pages, edition, location, series sql.NullString
	var urlField, doi, isbn, issn sql.NullString
	var note, keywords, abstract, pdfPath sql.NullString
	var external int

	err := s.Scan(
		&p.ID, &p.CiteKey, &p.Type, &p.Title, &p.Authors,
		&p.Year, &p.Month,
		&journal, &bookTitle, &publisher, &institution,
		&volume, &number, &pages, &edition, &location, &series,
		&urlField, &doi, &isbn, &issn,
		&note, &keywords, &abstract,
		&pdfPath, &external,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	p.Journal = journal.String
	p.BookTitle = bookTitle.String
	p.Publisher = publisher.String
	p.Institution = institution.String
	p.Volume = volume.String
	p.Number = number.String
	p.Pages = pages.String
	p.Edition = edition.String
	p.Location = location.String
	p.Series = series.String
	p.URL = urlField.String
	p.DOI = doi.String
	p.ISBN = isbn.String
	p.ISSN = issn.String
	p.Note = note.String
	p.Keywords = keywords.String
	p.Abstract = abstract.String
	p.PDFPath = pdfPath.String
	p.External = external != 0

	// Derived author fields are never stored; recompute them on every
	// load.
	p.Normalize()

	return &p, nil
}

func scanPublications(rows *sql.Rows) ([]publication.Publication, error) {
	var pubs []publication.Publication
	for rows.Next() {
		p, err := scanPublication(rows)
		if err != nil {
			return nil, err
		}
		if p != nil {
			pubs = append(pubs, *p)
		}
	}
	return pubs, rows.Err()
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// If query contains special chars, quote it
	if strings.ContainsAny(query, "\"*+-:(){}[]^~") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}
