package docsink

import (
	"errors"
	"fmt"
	"time"

	"github.com/exacode/docsink/db"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every configuration key read from the environment,
// e.g. DOCSINK_DB_NAME.
const EnvPrefix = "DOCSINK"

// Config holds the connection and storage settings of an Appender.
type Config struct {
	Host               string        `mapstructure:"host"`                 // Data directory holding the database file, or ":memory:"
	Port               int           `mapstructure:"port"`                 // Only used by custom dialers
	DBName             string        `mapstructure:"db_name"`              // Database name, also the file name
	CollectionName     string        `mapstructure:"collection_name"`      // Collection receiving the events
	Username           string        `mapstructure:"username"`             // Authenticate when both username and password are set
	Password           string        `mapstructure:"password"`             //
	ConnectionsPerHost int           `mapstructure:"connections_per_host"` // Connection pool size
	MaxWait            time.Duration `mapstructure:"max_wait"`             // Wait for a locked database
	ConnectTimeout     time.Duration `mapstructure:"connect_timeout"`      // Zero means no bound
	SocketTimeout      time.Duration `mapstructure:"socket_timeout"`       // Zero means no bound
	W                  int           `mapstructure:"w"`                    // Write concern, 0 disables syncing
	WTimeout           time.Duration `mapstructure:"wtimeout"`             // Bounds each insert
	Journal            bool          `mapstructure:"j"`                    //
	FSync              bool          `mapstructure:"fsync"`                //
	Capped             bool          `mapstructure:"capped"`               // Keep the collection size-bounded
	CappedSize         int64         `mapstructure:"capped_size"`          // In bytes
	IncludeCallerData  bool          `mapstructure:"include_caller_data"`  // Capture call sites in events
	CallerDepth        int           `mapstructure:"caller_depth"`         // Frames captured per call site
	Compression        string        `mapstructure:"compression"`          // none, zstd or brotli
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() Config {
	return Config{
		Host:               ".",
		Port:               27017,
		DBName:             "logsdb",
		CollectionName:     "logs",
		ConnectionsPerHost: 10,
		MaxWait:            2 * time.Minute,
		W:                  1,
		Capped:             true,
		CappedSize:         1 << 20,
		IncludeCallerData:  true,
		CallerDepth:        8,
		Compression:        string(db.CompressionNone),
	}
}

func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()
	v.SetDefault("host", defaults.Host)
	v.SetDefault("port", defaults.Port)
	v.SetDefault("db_name", defaults.DBName)
	v.SetDefault("collection_name", defaults.CollectionName)
	v.SetDefault("username", defaults.Username)
	v.SetDefault("password", defaults.Password)
	v.SetDefault("connections_per_host", defaults.ConnectionsPerHost)
	v.SetDefault("max_wait", defaults.MaxWait)
	v.SetDefault("connect_timeout", defaults.ConnectTimeout)
	v.SetDefault("socket_timeout", defaults.SocketTimeout)
	v.SetDefault("w", defaults.W)
	v.SetDefault("wtimeout", defaults.WTimeout)
	v.SetDefault("j", defaults.Journal)
	v.SetDefault("fsync", defaults.FSync)
	v.SetDefault("capped", defaults.Capped)
	v.SetDefault("capped_size", defaults.CappedSize)
	v.SetDefault("include_caller_data", defaults.IncludeCallerData)
	v.SetDefault("caller_depth", defaults.CallerDepth)
	v.SetDefault("compression", defaults.Compression)
}

// LoadConfig reads the configuration file at path, falling back to a "docsink" file in the
// working directory when path is empty, and applies DOCSINK_ environment overrides on top
// of the defaults. A missing file is only an error when path is set.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("docsink")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config file : %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config to struct : %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first setting that cannot be used to open a store.
func (cfg Config) Validate() error {
	switch {
	case cfg.DBName == "":
		return errors.New("invalid config : empty db_name")
	case cfg.CollectionName == "":
		return errors.New("invalid config : empty collection_name")
	case cfg.Capped && cfg.CappedSize <= 0:
		return fmt.Errorf("invalid config : capped_size must be positive, got %d", cfg.CappedSize)
	case cfg.ConnectionsPerHost < 0:
		return fmt.Errorf("invalid config : negative connections_per_host %d", cfg.ConnectionsPerHost)
	case cfg.CallerDepth < 0:
		return fmt.Errorf("invalid config : negative caller_depth %d", cfg.CallerDepth)
	case cfg.W < 0:
		return fmt.Errorf("invalid config : negative w %d", cfg.W)
	}
	if _, err := db.ParseCompression(cfg.Compression); err != nil {
		return fmt.Errorf("invalid config : %w", err)
	}
	return nil
}

// Address names the database the configuration points at.
func (cfg Config) Address() string {
	return db.PathFor(cfg.Host, cfg.DBName)
}

// DatabaseOptions converts the configuration into options for the embedded driver.
func (cfg Config) DatabaseOptions() (db.Options, error) {
	compression, err := db.ParseCompression(cfg.Compression)
	if err != nil {
		return db.Options{}, err
	}
	return db.Options{
		Name:           cfg.DBName,
		Path:           cfg.Address(),
		PoolSize:       cfg.ConnectionsPerHost,
		MaxWait:        cfg.MaxWait,
		ConnectTimeout: cfg.ConnectTimeout,
		SocketTimeout:  cfg.SocketTimeout,
		WriteConcern: db.WriteConcern{
			W:        cfg.W,
			WTimeout: cfg.WTimeout,
			FSync:    cfg.FSync,
			Journal:  cfg.Journal,
		},
		Compression: compression,
	}, nil
}
