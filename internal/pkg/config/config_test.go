package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func secrets() map[string]string {
	return map[string]string{
		"JWT_SECRET":           "access-secret",
		"REFRESH_TOKEN_SECRET": "refresh-secret",
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(secrets()))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.Auth.AccessTTL)
	assert.Equal(t, 168*time.Hour, cfg.Auth.RefreshTTL)
	assert.Equal(t, 5, cfg.Auth.RefreshLimit)
	assert.Equal(t, "50000", cfg.Payroll.BaseSalary.String())
	assert.Equal(t, "0.1", cfg.Payroll.TaxRate.String())
	assert.Equal(t, "0.12", cfg.Payroll.PFRate.String())
	assert.Equal(t, "0 2 1 * *", cfg.Payroll.Schedule)
	assert.Equal(t, "B2World", cfg.Org.Name)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_Overrides(t *testing.T) {
	env := secrets()
	env["PAYROLL_BASE_SALARY"] = "65000.50"
	env["ACCESS_TOKEN_TTL"] = "15m"
	env["ORG_TIMEZONE"] = "Asia/Kolkata"
	env["ENV"] = "production"

	cfg, err := load(context.Background(), envconfig.MapLookuper(env))
	require.NoError(t, err)

	assert.Equal(t, "65000.5", cfg.Payroll.BaseSalary.String())
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTTL)
	loc, err := cfg.Org.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", loc.String())
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secrets", map[string]string{}},
		{"same secrets", map[string]string{"JWT_SECRET": "s", "REFRESH_TOKEN_SECRET": "s"}},
		{"rates above one", func() map[string]string {
			m := secrets()
			m["PAYROLL_TAX_RATE"] = "0.6"
			m["PAYROLL_PF_RATE"] = "0.5"
			return m
		}()},
		{"bad timezone", func() map[string]string {
			m := secrets()
			m["ORG_TIMEZONE"] = "Mars/Olympus"
			return m
		}()},
		{"zero refresh limit", func() map[string]string {
			m := secrets()
			m["REFRESH_TOKEN_LIMIT"] = "0"
			return m
		}()},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := load(context.Background(), envconfig.MapLookuper(tc.env))
			assert.Error(t, err)
		})
	}
}
