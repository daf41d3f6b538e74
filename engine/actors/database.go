package actors

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Open returns the flat file db of mind, false if it has never been written.
func Open(mind, db string) (*os.File, bool) {
	file, err := os.Open(path(mind, db))
	if err != nil {
		return nil, false
	}
	return file, true
}

// Write replaces the flat file db of mind with b.
func Write(mind, db string, b []byte) error {
	if err := os.MkdirAll(directory(mind), 0755); err != nil {
		return err
	}
	tmp := path(mind, db) + ".tmp"
	if err := os.WriteFile(tmp, b, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path(mind, db))
}

// WriteJSON stores v as indented JSON.
func WriteJSON(mind, db string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", mind, db, err)
	}
	return Write(mind, db, b)
}

// ReadJSON decodes the flat file db of mind into v.
func ReadJSON(mind, db string, v any) error {
	file, ok := Open(mind, db)
	if !ok {
		return fmt.Errorf("%s has no flat file %s", mind, db)
	}
	defer file.Close()
	return json.NewDecoder(file).Decode(v)
}

func path(mind, db string) string {
	return filepath.Join(directory(mind), db+".dat")
}

func directory(mind string) string {
	dir := MakeOrGetConfig().GetString("rootDir")
	dir = dir + MakeOrGetConfig().GetString("flatFileDir")
	return filepath.Join(dir, mind)
}
