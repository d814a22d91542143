package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Source selects where board records and metadata come from.
type Source string

const (
	SourceLocal  Source = "local"
	SourceWebAPI Source = "webapi"
)

// MetadataMode selects how option metadata is fetched from the Web API.
type MetadataMode string

const (
	MetadataEntityDefinitions MetadataMode = "entity_definitions"
	MetadataProcedure         MetadataMode = "procedure"
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
	Board    BoardConfig    `toml:"board"`
	WebAPI   WebAPIConfig   `toml:"webapi"`
	Server   ServerConfig   `toml:"server"`
	Keys     KeyConfig      `toml:"keys"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LoggingConfig struct {
	Level   string `toml:"level"`
	DevFile bool   `toml:"dev_file"`
}

type BoardConfig struct {
	Source             Source `toml:"source"`
	View               string `toml:"view"`
	Entity             string `toml:"entity"`
	Attribute          string `toml:"attribute"`
	PageSize           int    `toml:"page_size"`
	LanguageID         int    `toml:"language_id"`
	FallbackLanguageID int    `toml:"fallback_language_id"`
	UpdateTimeout      string `toml:"update_timeout"`
}

type WebAPIConfig struct {
	BaseURL    string         `toml:"base_url"`
	APIVersion string         `toml:"api_version"`
	Token      string         `toml:"token"`
	Metadata   MetadataMode   `toml:"metadata"`
	Procedure  string         `toml:"procedure"`
	Columns    []ColumnConfig `toml:"columns"`
}

type ColumnConfig struct {
	Name        string `toml:"name"`
	DisplayName string `toml:"display_name"`
	DataType    string `toml:"data_type"`
}

type ServerConfig struct {
	HTTPBind    string `toml:"http_bind"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

// KeyConfig overrides board key bindings; empty values keep the defaults.
type KeyConfig struct {
	Grab          string `toml:"grab"`
	Drop          string `toml:"drop"`
	OpenRecord    string `toml:"open_record"`
	NextAttribute string `toml:"next_attribute"`
	CopyID        string `toml:"copy_id"`
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Logging: LoggingConfig{
			Level:   "info",
			DevFile: true,
		},
		Board: BoardConfig{
			Source:             SourceLocal,
			View:               "open-opportunities",
			Entity:             "",
			Attribute:          "",
			PageSize:           250,
			LanguageID:         1033,
			FallbackLanguageID: 1033,
			UpdateTimeout:      "30s",
		},
		WebAPI: WebAPIConfig{
			APIVersion: "9.1",
			Metadata:   MetadataEntityDefinitions,
			Procedure:  "RetrieveOptionSetMetadata",
		},
		Server: ServerConfig{
			HTTPBind:    "127.0.0.1:8080",
			APIEndpoint: "/api/v1",
			MCPEndpoint: "/mcp",
		},
		Keys: KeyConfig{
			Grab:          "space",
			Drop:          "enter",
			OpenRecord:    "o",
			NextAttribute: "tab",
			CopyID:        "y",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}

	switch strings.TrimSpace(strings.ToLower(c.Logging.Level)) {
	case "", "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	switch c.Board.Source {
	case SourceLocal:
		if strings.TrimSpace(c.Board.View) == "" {
			return errors.New("board.view is required for the local source")
		}
	case SourceWebAPI:
		if strings.TrimSpace(c.WebAPI.BaseURL) == "" {
			return errors.New("webapi.base_url is required for the webapi source")
		}
		if strings.TrimSpace(c.Board.Entity) == "" {
			return errors.New("board.entity is required for the webapi source")
		}
	default:
		return fmt.Errorf("invalid board.source: %q", c.Board.Source)
	}
	if c.Board.PageSize < 0 || c.Board.PageSize > 250 {
		return fmt.Errorf("board.page_size must be between 0 and 250, got %d", c.Board.PageSize)
	}
	if c.Board.LanguageID < 0 || c.Board.FallbackLanguageID < 0 {
		return errors.New("board language ids must be >= 0")
	}
	if _, err := c.Board.Timeout(); err != nil {
		return err
	}

	switch c.WebAPI.Metadata {
	case "", MetadataEntityDefinitions, MetadataProcedure:
	default:
		return fmt.Errorf("invalid webapi.metadata: %q", c.WebAPI.Metadata)
	}
	seen := map[string]struct{}{}
	for idx, column := range c.WebAPI.Columns {
		name := strings.TrimSpace(strings.ToLower(column.Name))
		if name == "" {
			return fmt.Errorf("webapi.columns[%d].name is required", idx)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("webapi.columns[%d].name is duplicated: %s", idx, name)
		}
		seen[name] = struct{}{}
	}

	keys := map[string]string{}
	for field, binding := range map[string]string{
		"keys.grab":           c.Keys.Grab,
		"keys.drop":           c.Keys.Drop,
		"keys.open_record":    c.Keys.OpenRecord,
		"keys.next_attribute": c.Keys.NextAttribute,
		"keys.copy_id":        c.Keys.CopyID,
	} {
		binding = strings.TrimSpace(binding)
		if binding == "" {
			continue
		}
		if other, ok := keys[binding]; ok {
			return fmt.Errorf("%s duplicates %s: %q", field, other, binding)
		}
		keys[binding] = field
	}

	for field, endpoint := range map[string]string{
		"server.api_endpoint": c.Server.APIEndpoint,
		"server.mcp_endpoint": c.Server.MCPEndpoint,
	} {
		endpoint = strings.TrimSpace(endpoint)
		if endpoint != "" && !strings.HasPrefix(endpoint, "/") {
			return fmt.Errorf("%s must start with /: %q", field, endpoint)
		}
	}
	return nil
}

// Timeout parses update_timeout; empty means the app default.
func (b BoardConfig) Timeout() (time.Duration, error) {
	raw := strings.TrimSpace(b.UpdateTimeout)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid board.update_timeout %q: %w", b.UpdateTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("board.update_timeout must be >= 0, got %s", d)
	}
	return d, nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
