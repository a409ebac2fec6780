package iffit

import (
	"database/sql"
	"fmt"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rcoenen/iffit/oops"
)

type IndexDB struct {
	db *sql.DB
}

// Record is an indexed image.
type Record struct {
	Path string
	Key  uint64
	Attributes
}

func NewIndexDB(file string) (*IndexDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate", file))
	if err != nil {
		return nil, oops.New(err, "failed to open index %s", file)
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS image (id INTEGER PRIMARY KEY NOT NULL, path TEXT NOT NULL UNIQUE, key TEXT NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, bits INTEGER NOT NULL, color_space TEXT NOT NULL, title TEXT, copyright TEXT, comment TEXT)"); err != nil {
		db.Close()
		return nil, oops.New(err, "failed to create image table")
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS author (image_id INTEGER NOT NULL, name TEXT NOT NULL, FOREIGN KEY(image_id) REFERENCES image(id) ON DELETE CASCADE)"); err != nil {
		db.Close()
		return nil, oops.New(err, "failed to create author table")
	}

	return &IndexDB{
		db: db,
	}, nil
}

func (db *IndexDB) Close() error {
	return db.db.Close()
}

// Keys are stored as hex as SQLite integers are signed
func formatKey(key uint64) string {
	return fmt.Sprintf("%016X", key)
}

func parseKey(s string) (uint64, error) {
	return strconv.ParseUint(s, 16, 64)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Upsert records the attributes of the image at path, replacing anything
// previously recorded for it.
func (db *IndexDB) Upsert(path string, key uint64, a Attributes) error {
	tx, err := db.db.Begin()
	if err != nil {
		return oops.New(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	var id int64
	switch err := tx.QueryRow("SELECT id FROM image WHERE path = ?", path).Scan(&id); err {
	case sql.ErrNoRows:
		result, err := tx.Exec("INSERT INTO image (path, key, width, height, bits, color_space, title, copyright, comment) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)", path, formatKey(key), a.PixelWidth, a.PixelHeight, a.BitsPerSample, a.ColorSpace, nullString(a.Title), nullString(a.Copyright), nullString(a.Comment))
		if err != nil {
			return oops.New(err, "failed to insert %s", path)
		}
		if id, err = result.LastInsertId(); err != nil {
			return oops.New(err, "failed to insert %s", path)
		}
	case nil:
		if _, err := tx.Exec("UPDATE image SET key = ?, width = ?, height = ?, bits = ?, color_space = ?, title = ?, copyright = ?, comment = ? WHERE id = ?", formatKey(key), a.PixelWidth, a.PixelHeight, a.BitsPerSample, a.ColorSpace, nullString(a.Title), nullString(a.Copyright), nullString(a.Comment), id); err != nil {
			return oops.New(err, "failed to update %s", path)
		}
		if _, err := tx.Exec("DELETE FROM author WHERE image_id = ?", id); err != nil {
			return oops.New(err, "failed to update %s", path)
		}
	default:
		return oops.New(err, "failed to look up %s", path)
	}

	for _, name := range a.Authors {
		if _, err := tx.Exec("INSERT INTO author (image_id, name) VALUES (?, ?)", id, name); err != nil {
			return oops.New(err, "failed to add author to %s", path)
		}
	}

	if err := tx.Commit(); err != nil {
		return oops.New(err, "failed to commit %s", path)
	}
	return nil
}

const selectRecord = "SELECT id, path, key, width, height, bits, color_space, title, copyright, comment FROM image"

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner) (int64, *Record, error) {
	var (
		id                        int64
		r                         Record
		key                       string
		title, copyright, comment sql.NullString
	)
	if err := row.Scan(&id, &r.Path, &key, &r.PixelWidth, &r.PixelHeight, &r.BitsPerSample, &r.ColorSpace, &title, &copyright, &comment); err != nil {
		return 0, nil, err
	}

	var err error
	if r.Key, err = parseKey(key); err != nil {
		return 0, nil, err
	}
	r.Title, r.Copyright, r.Comment = title.String, copyright.String, comment.String

	return id, &r, nil
}

func (db *IndexDB) authors(id int64) ([]string, error) {
	rows, err := db.db.Query("SELECT name FROM author WHERE image_id = ? ORDER BY rowid", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// FindByPath returns the record for path, or nil if it has not been indexed.
func (db *IndexDB) FindByPath(path string) (*Record, error) {
	id, r, err := scanRecord(db.db.QueryRow(selectRecord+" WHERE path = ?", path))
	switch err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		if r.Authors, err = db.authors(id); err != nil {
			return nil, oops.New(err, "failed to read authors of %s", path)
		}
		return r, nil
	default:
		return nil, oops.New(err, "failed to look up %s", path)
	}
}

// FindByColorSpace returns every record with the given color mode label,
// such as "HAM6" or "EHB", ordered by path.
func (db *IndexDB) FindByColorSpace(label string) ([]Record, error) {
	rows, err := db.db.Query(selectRecord+" WHERE color_space = ? ORDER BY path", label)
	if err != nil {
		return nil, oops.New(err, "failed to query %s images", label)
	}
	defer rows.Close()

	var (
		ids     []int64
		records []Record
	)
	for rows.Next() {
		id, r, err := scanRecord(rows)
		if err != nil {
			return nil, oops.New(err, "failed to read %s images", label)
		}
		ids = append(ids, id)
		records = append(records, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.New(err, "failed to read %s images", label)
	}
	rows.Close()

	for i, id := range ids {
		if records[i].Authors, err = db.authors(id); err != nil {
			return nil, oops.New(err, "failed to read authors of %s", records[i].Path)
		}
	}

	return records, nil
}

// Count returns the number of indexed images.
func (db *IndexDB) Count() (int, error) {
	var n int
	if err := db.db.QueryRow("SELECT COUNT(*) FROM image").Scan(&n); err != nil {
		return 0, oops.New(err, "failed to count images")
	}
	return n, nil
}
