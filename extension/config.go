package extension

import "time"

// Config holds the Tally extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.tally" or "tally" keys).
type Config struct {
	// DisableRoutes prevents HTTP route registration.
	DisableRoutes bool `json:"disable_routes" mapstructure:"disable_routes" yaml:"disable_routes"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// BasePath is the URL prefix for tally routes (default: "/tally").
	BasePath string `json:"base_path" mapstructure:"base_path" yaml:"base_path"`

	// GenesisAdmin is the account granted admin authority when the store
	// is empty on first start. Required for first boot unless the engine
	// is configured programmatically.
	GenesisAdmin string `json:"genesis_admin" mapstructure:"genesis_admin" yaml:"genesis_admin"`

	// TokenName is the informational token name (default: "Tally Token").
	TokenName string `json:"token_name" mapstructure:"token_name" yaml:"token_name"`

	// TokenSymbol is the informational token symbol (default: "TLY").
	TokenSymbol string `json:"token_symbol" mapstructure:"token_symbol" yaml:"token_symbol"`

	// TokenDecimals is the informational decimal count (default: 6).
	TokenDecimals uint8 `json:"token_decimals" mapstructure:"token_decimals" yaml:"token_decimals"`

	// JournalBatchSize is the number of applied operations to buffer
	// before flushing to the store (default: 100).
	JournalBatchSize int `json:"journal_batch_size" mapstructure:"journal_batch_size" yaml:"journal_batch_size"`

	// JournalFlushInterval is how frequently the persistence buffer is
	// flushed even if the batch size has not been reached (default: 5s).
	JournalFlushInterval time.Duration `json:"journal_flush_interval" mapstructure:"journal_flush_interval" yaml:"journal_flush_interval"`

	// DisableJournal stops the engine from writing journal entries.
	DisableJournal bool `json:"disable_journal" mapstructure:"disable_journal" yaml:"disable_journal"`

	// GroveDatabase is the name of a grove.DB registered in the DI container.
	// When set, the extension resolves this named database and auto-constructs
	// the appropriate store based on the driver type (pg/sqlite/mongo).
	// When empty and WithGroveDatabase was called, the default (unnamed) DB is used.
	GroveDatabase string `json:"grove_database" mapstructure:"grove_database" yaml:"grove_database"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		TokenName:            "Tally Token",
		TokenSymbol:          "TLY",
		TokenDecimals:        6,
		JournalBatchSize:     100,
		JournalFlushInterval: 5 * time.Second,
	}
}
