package database

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/koba/schema-diff/internal/schema"
)

// Supported dialects
const (
	DialectMySQL    = "mysql"
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// Config holds database connection configuration
type Config struct {
	Type     string `yaml:"type"` // "mysql", "postgres" or "sqlite"
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Database string `yaml:"database"` // file path for sqlite
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// Database interface defines operations for database connections
type Database interface {
	Connect() error
	Close() error
	Dialect() string
	GetAllTables() ([]string, error)
	GetTableSchema(tableName string) (*schema.TableSchema, error)
}

// NormalizeDialect maps the accepted spellings of a database type to one of
// the Dialect constants
func NormalizeDialect(dbType string) (string, error) {
	switch strings.ToLower(dbType) {
	case "mysql":
		return DialectMySQL, nil
	case "postgres", "postgresql":
		return DialectPostgres, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("unsupported database type: %s", dbType)
	}
}

// NewDatabase creates a new database connection based on type
func NewDatabase(config Config) (Database, error) {
	dialect, err := NormalizeDialect(config.Type)
	if err != nil {
		return nil, err
	}
	switch dialect {
	case DialectMySQL:
		return NewMySQL(config), nil
	case DialectPostgres:
		return NewPostgres(config), nil
	default:
		return NewSQLite(config), nil
	}
}

// LoadConfigFromEnv loads database configuration from environment variables
func LoadConfigFromEnv() (Config, error) {
	return finishConfig(applyEnv(Config{}))
}

// LoadConfig reads a YAML configuration file and applies environment
// variable overrides on top of it
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	return finishConfig(applyEnv(config))
}

func applyEnv(config Config) Config {
	overrides := map[string]*string{
		"DB_TYPE":     &config.Type,
		"DB_HOST":     &config.Host,
		"DB_PORT":     &config.Port,
		"DB_NAME":     &config.Database,
		"DB_USER":     &config.User,
		"DB_PASSWORD": &config.Password,
	}
	for key, field := range overrides {
		if v := os.Getenv(key); v != "" {
			*field = v
		}
	}
	return config
}

func finishConfig(config Config) (Config, error) {
	if config.Type == "" {
		return Config{}, fmt.Errorf("DB_TYPE environment variable is required")
	}
	dialect, err := NormalizeDialect(config.Type)
	if err != nil {
		return Config{}, err
	}
	if config.Database == "" {
		return Config{}, fmt.Errorf("DB_NAME environment variable is required")
	}

	if config.Host == "" && dialect != DialectSQLite {
		config.Host = "localhost"
	}

	if config.Port == "" {
		switch dialect {
		case DialectMySQL:
			config.Port = "3306"
		case DialectPostgres:
			config.Port = "5432"
		}
	}

	return config, nil
}
