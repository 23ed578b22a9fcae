package am

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/teranos/foreman/errors"
)

// BackupGenerations is how many previous versions SetValue keeps as
// <file>.back1 (newest) … <file>.backN (oldest).
const BackupGenerations = 3

func backupPath(configPath string, gen int) string {
	return fmt.Sprintf("%s.back%d", configPath, gen)
}

// rotateBackups shifts existing backups one generation older and copies the
// current file into .back1. A missing config file needs no backup.
func rotateBackups(configPath string) error {
	content, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}

	if err := os.Remove(backupPath(configPath, BackupGenerations)); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to drop oldest backup")
	}
	for gen := BackupGenerations - 1; gen >= 1; gen-- {
		from := backupPath(configPath, gen)
		if _, err := os.Stat(from); err != nil {
			continue
		}
		if err := os.Rename(from, backupPath(configPath, gen+1)); err != nil {
			return errors.Wrapf(err, "failed to rotate %s", filepath.Base(from))
		}
	}
	return errors.Wrap(
		os.WriteFile(backupPath(configPath, 1), content, DefaultFilePermissions),
		"failed to write backup")
}

// readTable parses configPath into a generic TOML table. A missing file is an
// empty table.
func readTable(configPath string) (map[string]interface{}, error) {
	table := make(map[string]interface{})
	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return table, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", configPath)
	}
	if err := toml.Unmarshal(data, &table); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", configPath)
	}
	return table, nil
}

// SetValue writes key (dot notation) into the TOML file at configPath,
// creating the file and intermediate tables as needed. The file is replaced
// by rename so a watching daemon never reads a half-written file.
func SetValue(configPath, key string, value interface{}) error {
	parts := strings.Split(key, ".")
	for _, p := range parts {
		if p == "" {
			return errors.NewUsageError("invalid config key %q", key)
		}
	}

	table, err := readTable(configPath)
	if err != nil {
		return err
	}
	section := table
	for _, part := range parts[:len(parts)-1] {
		next, ok := section[part].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			section[part] = next
		}
		section = next
	}
	section[parts[len(parts)-1]] = value

	data, err := toml.Marshal(table)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}
	if err := rotateBackups(configPath); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".am-*.toml")
	if err != nil {
		return errors.Wrap(err, "failed to create temporary config")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to write temporary config")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to write temporary config")
	}
	if err := os.Chmod(tmp.Name(), DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "failed to set config permissions")
	}

	if w := GetGlobalWatcher(); w != nil {
		if abs, _ := filepath.Abs(configPath); abs == w.Path() {
			w.MarkOwnWrite()
		}
	}
	return errors.Wrapf(os.Rename(tmp.Name(), configPath), "failed to replace %s", configPath)
}
