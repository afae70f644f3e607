// Package config loads sheetdash settings from TOML files, a .env file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultAPIURL            = "http://127.0.0.1:8001"
	DefaultDBFileName        = ".sheetdash.db"
	DefaultBlobDirName       = ".sheetdash-blobs"
	DefaultLogLevel          = "info"
	DefaultSheetName         = "Sheet1"
	DefaultFetchTimeout      = 30 * time.Second
	DefaultMaxColumns        = 23
	DefaultCacheTTL          = 300 * time.Second
	DefaultPageSize          = 100
	DefaultMaxPageSize       = 1000
	DefaultArchiveKeep       = 20
	DefaultArchiveEnabled    = true
	configFileName           = ".sheetdash.toml"
	dotEnvFileName           = ".env"
	configDirEnvKey          = "SHEETDASH_CONFIG_DIR"
	trustProjectConfigEnvKey = "SHEETDASH_TRUST_PROJECT_CONFIG"
)

// DefaultAllowedOrigins are the local dashboard dev servers.
var DefaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://localhost:3001",
	"http://localhost:5173",
}

// Duration is a time.Duration that decodes from TOML strings such as "30s".
// A bare number is read as seconds.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ParseDuration accepts Go duration syntax or an integer number of seconds.
func ParseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.New("empty duration")
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("duration must be positive: %q", raw)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", raw)
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive: %q", raw)
	}
	return d, nil
}

// SheetConfig identifies the source spreadsheet.
// An empty ExportURL selects the Google Sheets CSV endpoint.
type SheetConfig struct {
	DocumentID   string   `toml:"document_id"`
	SheetName    string   `toml:"sheet_name"`
	ExportURL    string   `toml:"export_url"`
	FetchTimeout Duration `toml:"fetch_timeout"`
	MaxColumns   int      `toml:"max_columns"`
}

// CacheConfig controls the dataset cache.
type CacheConfig struct {
	TTL             Duration `toml:"ttl"`
	CoalesceRefresh bool     `toml:"coalesce_refresh"`
}

// PaginationConfig bounds page sizes.
type PaginationConfig struct {
	DefaultPageSize int `toml:"default_page_size"`
	MaxPageSize     int `toml:"max_page_size"`
}

// ArchiveConfig controls the snapshot archive.
type ArchiveConfig struct {
	Enabled bool   `toml:"enabled"`
	Keep    int    `toml:"keep"`
	BlobDir string `toml:"blob_dir"`
}

// CORSConfig lists browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `toml:"allowed_origins"`
}

// Config defines runtime configuration for sheetdash.
type Config struct {
	APIURL                   string           `toml:"api_url"`
	DBPath                   string           `toml:"db_path"`
	LogLevel                 string           `toml:"log_level"`
	LogFile                  string           `toml:"log_file"`
	Sheet                    SheetConfig      `toml:"sheet"`
	Cache                    CacheConfig      `toml:"cache"`
	Pagination               PaginationConfig `toml:"pagination"`
	Archive                  ArchiveConfig    `toml:"archive"`
	CORS                     CORSConfig       `toml:"cors"`
	TrustedProjectConfigPath string           `toml:"-"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		APIURL:   DefaultAPIURL,
		LogLevel: DefaultLogLevel,
		Sheet: SheetConfig{
			SheetName:    DefaultSheetName,
			FetchTimeout: Duration{DefaultFetchTimeout},
			MaxColumns:   DefaultMaxColumns,
		},
		Cache: CacheConfig{TTL: Duration{DefaultCacheTTL}},
		Pagination: PaginationConfig{
			DefaultPageSize: DefaultPageSize,
			MaxPageSize:     DefaultMaxPageSize,
		},
		Archive: ArchiveConfig{
			Enabled: DefaultArchiveEnabled,
			Keep:    DefaultArchiveKeep,
		},
		CORS: CORSConfig{AllowedOrigins: append([]string(nil), DefaultAllowedOrigins...)},
	}
}

func loadFile(path string, cfg *Config) error {
	_, err := loadFileIfExists(path, cfg)
	return err
}

func loadFileIfExists(path string, cfg *Config) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return false, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return true, nil
}

// loadDotEnv reads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set. A missing file is ignored.
func loadDotEnv(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func overrideConfigPath() (string, bool) {
	dir := strings.TrimSpace(os.Getenv(configDirEnvKey))
	if dir == "" {
		return "", false
	}
	return filepath.Join(dir, configFileName), true
}

func trustProjectConfig() bool {
	raw := strings.TrimSpace(os.Getenv(trustProjectConfigEnvKey))
	if raw == "" {
		return false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return value
}

// GlobalPath returns the path to the global config file.
func GlobalPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configFileName), nil
}

// ProjectPath returns the path to the project config file.
func ProjectPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, configFileName), nil
}

// Load reads .env, trusted config files and env overrides, in that order of
// increasing precedence for files and env.
func Load() (*Config, error) {
	cfg := Default()

	if cwd, err := os.Getwd(); err == nil {
		if err := loadDotEnv(filepath.Join(cwd, dotEnvFileName)); err != nil {
			return nil, err
		}
	}

	if overridePath, ok := overrideConfigPath(); ok {
		if err := loadFile(overridePath, &cfg); err != nil {
			return nil, err
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			if err := loadFile(filepath.Join(home, configFileName), &cfg); err != nil {
				return nil, err
			}
		}

		if trustProjectConfig() {
			if cwd, err := os.Getwd(); err == nil {
				projectPath := filepath.Join(cwd, configFileName)
				loaded, err := loadFileIfExists(projectPath, &cfg)
				if err != nil {
					return nil, err
				}
				if loaded {
					cfg.TrustedProjectConfigPath = projectPath
				}
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if cfg.DBPath == "" {
		if cwd, err := os.Getwd(); err == nil {
			cfg.DBPath = filepath.Join(cwd, DefaultDBFileName)
		}
	}
	cfg.normalize()

	return &cfg, nil
}

// firstEnv returns the first non-empty variable among keys.
func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

func (c *Config) applyEnv() error {
	if v := firstEnv("SHEETDASH_API_URL"); v != "" {
		c.APIURL = v
	}
	if v := firstEnv("SHEETDASH_DB"); v != "" {
		c.DBPath = v
	}
	if v := firstEnv("SHEETDASH_LOG_FILE"); v != "" {
		c.LogFile = v
	}
	if v := firstEnv("SHEETDASH_DOCUMENT_ID", "GOOGLE_SHEET_ID"); v != "" {
		c.Sheet.DocumentID = v
	}
	if v := firstEnv("SHEETDASH_SHEET_NAME", "SHEET_NAME"); v != "" {
		c.Sheet.SheetName = v
	}
	if v := firstEnv("SHEETDASH_CACHE_TTL", "CACHE_DURATION"); v != "" {
		ttl, err := ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid cache ttl: %w", err)
		}
		c.Cache.TTL = Duration{ttl}
	}
	return nil
}

func (c *Config) normalize() {
	if strings.TrimSpace(c.Sheet.SheetName) == "" {
		c.Sheet.SheetName = DefaultSheetName
	}
	c.Sheet.ExportURL = strings.TrimSpace(c.Sheet.ExportURL)
	if c.Sheet.FetchTimeout.Duration <= 0 {
		c.Sheet.FetchTimeout = Duration{DefaultFetchTimeout}
	}
	if c.Sheet.MaxColumns < 0 {
		c.Sheet.MaxColumns = DefaultMaxColumns
	}
	if c.Cache.TTL.Duration <= 0 {
		c.Cache.TTL = Duration{DefaultCacheTTL}
	}
	if c.Pagination.MaxPageSize <= 0 {
		c.Pagination.MaxPageSize = DefaultMaxPageSize
	}
	if c.Pagination.DefaultPageSize <= 0 {
		c.Pagination.DefaultPageSize = DefaultPageSize
	}
	if c.Pagination.DefaultPageSize > c.Pagination.MaxPageSize {
		c.Pagination.DefaultPageSize = c.Pagination.MaxPageSize
	}
	if c.Archive.Keep <= 0 {
		c.Archive.Keep = DefaultArchiveKeep
	}
	if c.Archive.BlobDir == "" && c.DBPath != "" {
		c.Archive.BlobDir = filepath.Join(filepath.Dir(c.DBPath), DefaultBlobDirName)
	}
	c.CORS.AllowedOrigins = splitList(c.CORS.AllowedOrigins)
}

func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		for _, part := range splitCSV(v) {
			if _, ok := seen[part]; ok {
				continue
			}
			seen[part] = struct{}{}
			out = append(out, part)
		}
	}
	return out
}

func splitCSV(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
