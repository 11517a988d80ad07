package migrations

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

func wrapOpenDB(err error) error {
	return fmt.Errorf("open db: %w", err)
}

// OpenDB opens a local sqlite database, `path` can be ":memory:".
func OpenDB(path string) (*sql.DB, error) {
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0777)
		if err != nil {
			return nil, wrapOpenDB(err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrapOpenDB(err)
	}

	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	// (this also keeps ":memory:" databases alive across queries)
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return nil, wrapOpenDB(err)
	}

	return db, nil
}

// OpenRemoteDB opens a libsql database over the network.
func OpenRemoteDB(dbUrl, authToken string) (*sql.DB, error) {
	values := url.Values{}
	if authToken != "" {
		values.Add("authToken", authToken)
	}
	target := dbUrl
	if len(values) > 0 {
		target += "?" + values.Encode()
	}
	db, err := sql.Open("libsql", target)
	if err != nil {
		return nil, wrapOpenDB(err)
	}
	return db, nil
}

func wrapMigrate(err error) error {
	return fmt.Errorf("migrate db: %w", err)
}

// Migrate executes every statement of schema in a single transaction. Schemas are expected
// to be idempotent (ex. CREATE TABLE IF NOT EXISTS).
func Migrate(db *sql.DB, schema string) error {
	tx, err := db.Begin()
	if err != nil {
		return wrapMigrate(err)
	}
	defer tx.Rollback()

	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		_, err = tx.Exec(stmt)
		if err != nil {
			return wrapMigrate(err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return wrapMigrate(err)
	}
	return nil
}

// Config selects between a local sqlite file and a remote libsql database.
type Config struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

// OpenAndMigrate opens the database described by config and applies schema to it.
func (config Config) OpenAndMigrate(schema string) (*sql.DB, error) {
	var db *sql.DB
	var err error
	switch {
	case config.Url != "":
		db, err = OpenRemoteDB(config.Url, config.AuthToken)
	case config.File != "":
		db, err = OpenDB(config.File)
	default:
		return nil, wrapOpenDB(fmt.Errorf("neither a file nor a url was specified"))
	}
	if err != nil {
		return nil, err
	}

	err = Migrate(db, schema)
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
