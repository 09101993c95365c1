package types

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty driver returns ErrDriverEmpty",
			config:  Config{Driver: "", DSN: "file.db"},
			wantErr: ErrDriverEmpty,
		},
		{
			name:    "unknown driver returns ErrUnknownDriver",
			config:  Config{Driver: "mysql", DSN: "root@/db"},
			wantErr: ErrUnknownDriver,
		},
		{
			name:    "valid sqlite config",
			config:  Config{Driver: "sqlite", DSN: ":memory:"},
			wantErr: nil,
		},
		{
			name:    "sqlite with empty DSN is valid at config level",
			config:  Config{Driver: "sqlite"},
			wantErr: nil,
		},
		{
			name:    "pgx without DSN returns ErrDSNEmpty",
			config:  Config{Driver: "pgx"},
			wantErr: ErrDSNEmpty,
		},
		{
			name:    "postgres variant on sqlite is unsupported",
			config:  Config{Driver: "sqlite", Variant: VariantPostgres},
			wantErr: ErrVariantUnsupported,
		},
		{
			name:    "generic variant on pgx is allowed",
			config:  Config{Driver: "pgx", DSN: "postgres://localhost/test", Variant: VariantGeneric},
			wantErr: nil,
		},
		{
			name:    "unknown variant returns ErrUnknownVariant",
			config:  Config{Driver: "sqlite", Variant: "mysql"},
			wantErr: ErrUnknownVariant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigEffectiveVariant(t *testing.T) {
	tests := []struct {
		config Config
		want   Variant
	}{
		{Config{Driver: DriverSQLite}, VariantGeneric},
		{Config{Driver: DriverPgx}, VariantPostgres},
		{Config{Driver: DriverPostgres}, VariantPostgres},
		{Config{Driver: DriverPgx, Variant: VariantGeneric}, VariantGeneric},
	}
	for _, tt := range tests {
		if got := tt.config.EffectiveVariant(); got != tt.want {
			t.Errorf("EffectiveVariant(%+v) = %q, want %q", tt.config, got, tt.want)
		}
	}
}
