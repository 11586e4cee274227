// Package config loads the settings of the visitor counter from the
// environment.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/rwool/visitor-counter/pkg/service"
	"github.com/rwool/visitor-counter/pkg/service/keyvalue"
)

// Supported counter store backends.
const (
	BackendDynamoDB  = "dynamodb"
	BackendRedis     = "redis"
	BackendDatastore = "datastore"
	BackendMemory    = "memory"
)

// DefaultListenAddress is the address the HTTP server listens on.
const DefaultListenAddress = "0.0.0.0:8080"

// Config contains all of the configuration for running the services.
type Config struct {
	Backend       string
	Key           string
	AllowedOrigin string

	DynamoDBTable        string
	DynamoDBPartitionKey string

	RedisAddress  string
	RedisPassword string

	DatastoreProjectID string
	DatastoreKind      string

	ListenAddress string
	LogLevel      string
}

// Load reads the configuration with LoadEnv and validates it.
func Load(files ...string) (Config, error) {
	c, err := LoadEnv(files...)
	if err != nil {
		return Config{}, err
	}
	return c, c.Validate()
}

// LoadEnv reads a .env file, when present, and then the process environment.
// Variables already set in the environment take precedence over the file. The
// result is not validated.
func LoadEnv(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(errors.Cause(err)) {
		return Config{}, errors.Wrap(err, "unable to read environment file")
	}
	return FromEnv(os.LookupEnv), nil
}

// FromEnv builds a Config using lookup to read variables and applies
// defaults. The result is not validated.
func FromEnv(lookup func(string) (string, bool)) Config {
	get := func(name, def string) string {
		if v, ok := lookup(name); ok && v != "" {
			return v
		}
		return def
	}

	origin := get("ALLOWED_ORIGIN", "")
	if origin == "" {
		if domain := get("FULL_DOMAIN_NAME", ""); domain != "" {
			origin = "https://" + domain
		}
	}

	return Config{
		Backend:              strings.ToLower(get("COUNTER_BACKEND", BackendDynamoDB)),
		Key:                  get("COUNTER_KEY", service.DefaultKey),
		AllowedOrigin:        origin,
		DynamoDBTable:        get("DYNAMODB_TABLE_NAME", ""),
		DynamoDBPartitionKey: get("DYNAMODB_PARTITION_KEY", keyvalue.DefaultPartitionKey),
		RedisAddress:         get("REDIS_ADDRESS", ""),
		RedisPassword:        get("REDIS_PASSWORD", ""),
		DatastoreProjectID:   get("DATASTORE_PROJECT_ID", get("PROJECT_ID", "")),
		DatastoreKind:        get("DATASTORE_KIND", keyvalue.DefaultDatastoreKind),
		ListenAddress:        get("LISTEN_ADDRESS", DefaultListenAddress),
		LogLevel:             strings.ToLower(get("LOG_LEVEL", "info")),
	}
}

// Validate checks that the settings required by the selected backend are
// present.
func (c Config) Validate() error {
	if err := c.Service().Validate(); err != nil {
		return err
	}
	switch c.Backend {
	case BackendDynamoDB:
		if c.DynamoDBTable == "" {
			return errors.New("missing DynamoDB table name")
		}
	case BackendRedis:
		if c.RedisAddress == "" {
			return errors.New("missing Redis address")
		}
	case BackendDatastore:
		if c.DatastoreProjectID == "" {
			return errors.New("missing Datastore project ID")
		}
	case BackendMemory:
	default:
		return errors.Errorf("unknown counter backend %q", c.Backend)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Service returns the settings of the counter service.
func (c Config) Service() service.Config {
	return service.Config{
		Key:           c.Key,
		AllowedOrigin: c.AllowedOrigin,
	}
}
