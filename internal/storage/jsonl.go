// Package storage persists publications in SQLite with JSONL snapshots.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/matsen/publist/internal/publication"
)

// MaxSnapshotLineCapacity is the maximum buffer size for reading
// snapshot lines (1MB per line); abstracts can be long.
const MaxSnapshotLineCapacity = 1024 * 1024

// WriteSnapshot writes publications to a JSONL file, one record per
// line in the order given, replacing existing content. Derived author
// fields are not written; they are recomputed on load.
func WriteSnapshot(path string, pubs []publication.Publication) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot file: %w", err)
	}
	defer f.Close()

	for i := range pubs {
		data, err := json.Marshal(&pubs[i])
		if err != nil {
			return fmt.Errorf("encoding publication %d: %w", i, err)
		}

		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("writing publication %d: %w", i, err)
		}
		if _, err := f.WriteString("\n"); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}

	return nil
}

// ReadSnapshot reads all publications from a JSONL snapshot file. A
// missing file returns an empty slice; blank lines are skipped.
func ReadSnapshot(path string) ([]publication.Publication, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening snapshot file: %w", err)
	}
	defer f.Close()

	var pubs []publication.Publication
	scanner := bufio.NewScanner(f)

	buf := make([]byte, MaxSnapshotLineCapacity)
	scanner.Buffer(buf, MaxSnapshotLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var p publication.Publication
		if err := json.Unmarshal(line, &p); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		pubs = append(pubs, p)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading snapshot file: %w", err)
	}

	return pubs, nil
}

// RebuildFromSnapshot replaces the store contents with the snapshot
// records, preserving their ids and citation keys. Every record must
// carry an id; the insertion-order contract is meaningless without
// them.
func (d *DB) RebuildFromSnapshot(pubs []publication.Publication) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM publications`); err != nil {
		return fmt.Errorf("clearing publications: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM publications_fts`); err != nil {
		return fmt.Errorf("clearing search index: %w", err)
	}

	insertStmt, err := tx.Prepare(`
		INSERT INTO publications (
			id, citekey, entry_type, title, authors,
			pub_year, pub_month,
			journal, book_title, publisher, institution,
			volume, number, pages, edition, location, series,
			url, doi, isbn, issn,
			note, keywords, abstract,
			pdf_path, external
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer insertStmt.Close()

	ftsStmt, err := tx.Prepare(`
		INSERT INTO publications_fts (rowid, citekey, title, authors_text, venue, abstract, keywords)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing search insert: %w", err)
	}
	defer ftsStmt.Close()

	for i := range pubs {
		p := &pubs[i]
		if p.ID == 0 {
			return fmt.Errorf("snapshot record %q has no id", p.CiteKey)
		}
		p.Normalize()
		if err := p.Validate(); err != nil {
			return fmt.Errorf("snapshot record %q: %w", p.CiteKey, err)
		}

		args := append([]interface{}{p.ID}, insertArgs(p)...)
		if _, err := insertStmt.Exec(args...); err != nil {
			return fmt.Errorf("restoring %q: %w", p.CiteKey, err)
		}
		if _, err := ftsStmt.Exec(p.ID, p.CiteKey, p.Title, searchText(p), p.JournalOrBookTitle(), p.Abstract, p.Keywords); err != nil {
			return fmt.Errorf("restoring search row for %q: %w", p.CiteKey, err)
		}
	}

	return tx.Commit()
}
