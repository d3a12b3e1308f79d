package db

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/russross/meddler"
)

// init registers tags to be used to read/write from SQL DBs using meddler
func init() {
	meddler.Default = meddler.SQLite
	meddler.Register("jsontext", JSONTextMeddler{})
}

// JSONTextMeddler stores a field as JSON in a TEXT column.
// meddler's builtin "json" converter writes []byte, which sqlite keeps as a BLOB.
type JSONTextMeddler struct{}

// PreRead is called before a Scan operation for fields that have the JSONTextMeddler
func (m JSONTextMeddler) PreRead(fieldAddr interface{}) (scanTarget interface{}, err error) {
	return new(sql.NullString), nil
}

// PostRead is called after a Scan operation for fields that have the JSONTextMeddler
func (m JSONTextMeddler) PostRead(fieldAddr, scanTarget interface{}) error {
	ns, ok := scanTarget.(*sql.NullString)
	if !ok {
		return fmt.Errorf("expected *sql.NullString, got %T", scanTarget)
	}
	if !ns.Valid || ns.String == "" {
		return nil
	}

	if err := json.Unmarshal([]byte(ns.String), fieldAddr); err != nil {
		return fmt.Errorf("JSONTextMeddler.PostRead: %w", err)
	}
	return nil
}

// PreWrite is called before an Insert or Update operation for fields that have the JSONTextMeddler
func (m JSONTextMeddler) PreWrite(field interface{}) (saveValue interface{}, err error) {
	encoded, err := json.Marshal(field)
	if err != nil {
		return nil, fmt.Errorf("JSONTextMeddler.PreWrite: %w", err)
	}
	return string(encoded), nil
}
