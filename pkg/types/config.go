package types

import "errors"

// Config holds driver selection and connection parameters for Backend.Attach.
type Config struct {
	Driver  string  `json:"driver" yaml:"driver"`
	DSN     string  `json:"dsn" yaml:"dsn"`
	Variant Variant `json:"variant" yaml:"variant"`
	DataDir string  `json:"data_dir" yaml:"data_dir"`

	// Seed loads the fixture on Attach. Reset drops existing fixture
	// tables first.
	Seed  bool `json:"seed" yaml:"seed"`
	Reset bool `json:"reset" yaml:"reset"`
}

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPgx      = "pgx"
	DriverPostgres = "postgres"
)

// Config validation errors.
var (
	ErrDriverEmpty   = errors.New("driver must not be empty")
	ErrUnknownDriver = errors.New("unknown driver")
	ErrDSNEmpty      = errors.New("dsn must not be empty for postgres drivers")
)

// knownDrivers lists the drivers that Validate accepts.
var knownDrivers = map[string]bool{
	DriverSQLite:   true,
	DriverPgx:      true,
	DriverPostgres: true,
}

// EffectiveVariant returns the configured variant or the driver's default.
func (c Config) EffectiveVariant() Variant {
	if c.Variant == "" {
		return DefaultVariant(c.Driver)
	}
	return c.Variant
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Driver == "" {
		return ErrDriverEmpty
	}
	if !knownDrivers[c.Driver] {
		return ErrUnknownDriver
	}
	if c.Driver != DriverSQLite && c.DSN == "" {
		return ErrDSNEmpty
	}
	v, err := ParseVariant(string(c.EffectiveVariant()))
	if err != nil {
		return err
	}
	if !v.SupportsDriver(c.Driver) {
		return ErrVariantUnsupported
	}
	return nil
}
