package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

var allowedKeys = []string{
	"api_url",
	"db_path",
	"log_level",
	"log_file",
	"sheet.document_id",
	"sheet.sheet_name",
	"sheet.export_url",
	"sheet.fetch_timeout",
	"sheet.max_columns",
	"cache.ttl",
	"cache.coalesce_refresh",
	"pagination.default_page_size",
	"pagination.max_page_size",
	"archive.enabled",
	"archive.keep",
	"archive.blob_dir",
	"cors.allowed_origins",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "api_url":
		return c.APIURL, nil
	case "db_path":
		return c.DBPath, nil
	case "log_level":
		return c.LogLevel, nil
	case "log_file":
		return c.LogFile, nil
	case "sheet.document_id":
		return c.Sheet.DocumentID, nil
	case "sheet.sheet_name":
		return c.Sheet.SheetName, nil
	case "sheet.export_url":
		return c.Sheet.ExportURL, nil
	case "sheet.fetch_timeout":
		return c.Sheet.FetchTimeout.String(), nil
	case "sheet.max_columns":
		return strconv.Itoa(c.Sheet.MaxColumns), nil
	case "cache.ttl":
		return c.Cache.TTL.String(), nil
	case "cache.coalesce_refresh":
		return strconv.FormatBool(c.Cache.CoalesceRefresh), nil
	case "pagination.default_page_size":
		return strconv.Itoa(c.Pagination.DefaultPageSize), nil
	case "pagination.max_page_size":
		return strconv.Itoa(c.Pagination.MaxPageSize), nil
	case "archive.enabled":
		return strconv.FormatBool(c.Archive.Enabled), nil
	case "archive.keep":
		return strconv.Itoa(c.Archive.Keep), nil
	case "archive.blob_dir":
		return c.Archive.BlobDir, nil
	case "cors.allowed_origins":
		return strings.Join(c.CORS.AllowedOrigins, ","), nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	if err := setNestedKey(data, strings.Split(key, "."), parsedValue); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "sheet.fetch_timeout", "cache.ttl":
		d, err := ParseDuration(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be a positive duration", key)
		}
		return d.String(), nil
	case "pagination.default_page_size", "pagination.max_page_size", "archive.keep":
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return int64(parsed), nil
	case "sheet.max_columns":
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("%s must be a non-negative integer", key)
		}
		return int64(parsed), nil
	case "cache.coalesce_refresh", "archive.enabled":
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false", key)
		}
		return parsed, nil
	case "log_level":
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "warning", "error":
			return strings.ToLower(value), nil
		default:
			return nil, fmt.Errorf("log_level must be one of debug, info, warn, error")
		}
	case "cors.allowed_origins":
		return splitCSV(value), nil
	default:
		return value, nil
	}
}

func setNestedKey(data map[string]any, parts []string, value any) error {
	if len(parts) == 0 {
		return fmt.Errorf("invalid config key")
	}
	if len(parts) == 1 {
		data[parts[0]] = value
		return nil
	}
	childRaw, ok := data[parts[0]]
	if !ok {
		child := map[string]any{}
		data[parts[0]] = child
		return setNestedKey(child, parts[1:], value)
	}
	child, ok := childRaw.(map[string]any)
	if !ok {
		return fmt.Errorf("cannot set nested key %q", strings.Join(parts, "."))
	}
	return setNestedKey(child, parts[1:], value)
}
