package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matsen/publist/internal/publication"
)

func TestReadSnapshot_NonExistentFile(t *testing.T) {
	pubs, err := ReadSnapshot("/nonexistent/path/publications.jsonl")
	if err != nil {
		t.Fatalf("ReadSnapshot() error = %v (should return nil for nonexistent file)", err)
	}
	if len(pubs) != 0 {
		t.Errorf("ReadSnapshot() returned %d pubs, want 0", len(pubs))
	}
}

func TestReadSnapshot_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "publications.jsonl")

	if err := os.WriteFile(path, []byte(""), 0644); err != nil {
		t.Fatalf("Failed to create empty file: %v", err)
	}

	pubs, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot() error = %v", err)
	}
	if len(pubs) != 0 {
		t.Errorf("ReadSnapshot() returned %d pubs, want 0", len(pubs))
	}
}

func TestReadSnapshot_SkipsEmptyLines(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "publications.jsonl")

	content := `{"id":1,"citekey":"Smith2020a","type":"article","title":"Paper A","authors":"A. Smith","year":2020}

{"id":2,"citekey":"Jones2021a","type":"article","title":"Paper B","authors":"B. Jones","year":2021}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	pubs, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot() error = %v", err)
	}
	if len(pubs) != 2 {
		t.Fatalf("ReadSnapshot() returned %d pubs, want 2", len(pubs))
	}
	if pubs[0].CiteKey != "Smith2020a" || pubs[1].CiteKey != "Jones2021a" {
		t.Errorf("ReadSnapshot() order = %q, %q", pubs[0].CiteKey, pubs[1].CiteKey)
	}
}

func TestReadSnapshot_MalformedLine(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "publications.jsonl")

	content := `{"id":1,"citekey":"Smith2020a","type":"article","title":"Paper A","authors":"A. Smith","year":2020}
{not json}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	if _, err := ReadSnapshot(path); err == nil {
		t.Error("ReadSnapshot() should error on malformed line")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "publications.jsonl")

	db, err := OpenDB(filepath.Join(tmpDir, "publications.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	seed := []publication.Publication{
		{Type: "article", Title: "First Paper", Authors: "Alice Smith", Year: 2020, Journal: "Genetics", Keywords: "trees; inference"},
		{Type: "article", Title: "Second Paper", Authors: "Alice Smith", Year: 2020},
		{Type: "book", Title: "A Long Book", Authors: "Bob Jones", Year: 2019, Publisher: "MIT Press", External: true},
	}
	for i := range seed {
		if err := db.Insert(&seed[i]); err != nil {
			t.Fatalf("Insert(%d) error = %v", i, err)
		}
	}

	pubs, err := db.List(ListFilters{}, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if err := WriteSnapshot(path, pubs); err != nil {
		t.Fatalf("WriteSnapshot() error = %v", err)
	}

	read, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot() error = %v", err)
	}
	if len(read) != 3 {
		t.Fatalf("ReadSnapshot() returned %d pubs, want 3", len(read))
	}

	// Restore into a fresh store; ids and keys survive.
	db2, err := OpenDB(filepath.Join(tmpDir, "restored.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db2.Close()

	if err := db2.RebuildFromSnapshot(read); err != nil {
		t.Fatalf("RebuildFromSnapshot() error = %v", err)
	}

	count, err := db2.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 3 {
		t.Errorf("Count() = %d, want 3", count)
	}

	p, err := db2.GetByCiteKey("Smith2020b")
	if err != nil {
		t.Fatalf("GetByCiteKey() error = %v", err)
	}
	if p == nil {
		t.Fatal("GetByCiteKey() returned nil after restore")
	}
	if p.ID != 2 {
		t.Errorf("restored id = %d, want 2", p.ID)
	}
	if p.Title != "Second Paper" {
		t.Errorf("restored title = %q, want Second Paper", p.Title)
	}

	// The search index is rebuilt with the rows.
	found, err := db2.Search("jones", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(found) != 1 || found[0].CiteKey != "Jones2019a" {
		t.Errorf("Search(jones) after restore = %v, want Jones2019a", found)
	}

	// New inserts continue past the restored ids.
	next := publication.Publication{Type: "article", Title: "Fourth Paper", Authors: "Carol White", Year: 2022}
	if err := db2.Insert(&next); err != nil {
		t.Fatalf("Insert() after restore error = %v", err)
	}
	if next.ID != 4 {
		t.Errorf("Insert() after restore id = %d, want 4", next.ID)
	}
}

func TestRebuildFromSnapshot_RequiresIDs(t *testing.T) {
	tmpDir := t.TempDir()
	db, err := OpenDB(filepath.Join(tmpDir, "publications.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	pubs := []publication.Publication{
		{CiteKey: "Smith2020a", Type: "article", Title: "No ID", Authors: "Alice Smith", Year: 2020},
	}
	if err := db.RebuildFromSnapshot(pubs); err == nil {
		t.Error("RebuildFromSnapshot() should error on record without id")
	}
}

func TestRebuildFromSnapshot_Replaces(t *testing.T) {
	tmpDir := t.TempDir()
	db, err := OpenDB(filepath.Join(tmpDir, "publications.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	old := publication.Publication{Type: "article", Title: "Old Paper", Authors: "Alice Smith", Year: 2020}
	if err := db.Insert(&old); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	pubs := []publication.Publication{
		{ID: 7, CiteKey: "Jones2021a", Type: "article", Title: "New Paper", Authors: "Bob Jones", Year: 2021},
	}
	if err := db.RebuildFromSnapshot(pubs); err != nil {
		t.Fatalf("RebuildFromSnapshot() error = %v", err)
	}

	count, _ := db.Count()
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
	if p, _ := db.GetByCiteKey("Smith2020a"); p != nil {
		t.Error("old record survived rebuild")
	}
	if p, _ := db.GetByID(7); p == nil || p.CiteKey != "Jones2021a" {
		t.Errorf("GetByID(7) = %v, want Jones2021a", p)
	}
}
