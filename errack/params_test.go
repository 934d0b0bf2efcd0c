package errack_test

import (
	"errors"
	"testing"
	"time"

	"github.com/remiges-tech/errack/errack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeExpression(t *testing.T) {
	tests := []struct {
		expr    string
		want    time.Duration
		wantErr bool
	}{
		{"30s", 30 * time.Second, false},
		{"5m", 5 * time.Minute, false},
		{"5h", 5 * time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{" 2h ", 2 * time.Hour, false},
		{"", 0, true},
		{"h", 0, true},
		{"10", 0, true},
		{"1w", 0, true},
		{"1.5h", 0, true},
		{"-1h", 0, true},
		{"0s", 0, true},
		{"1d5h", 0, true},
		{"99999999999999999999d", 0, true},
		{"9999999999d", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := errack.ParseTimeExpression(tt.expr)
			if tt.wantErr {
				assert.True(t, errors.Is(err, errack.ErrInvalidTimeExpression))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveParams(t *testing.T) {
	db := newMemDB()
	units := errack.Units{"errack": db}

	t.Run("all parameters", func(t *testing.T) {
		p, err := errack.ResolveParams(map[string]string{
			errack.ParamEmfName:   "errack",
			errack.ParamSingleRun: "true",
			errack.ParamNextRun:   "5h",
		}, units)
		require.NoError(t, err)
		assert.Equal(t, "errack", p.EmfName)
		assert.Same(t, db, p.DB)
		assert.True(t, p.SingleRun)
		assert.Equal(t, 5*time.Hour, p.NextRun)
	})

	t.Run("defaults", func(t *testing.T) {
		p, err := errack.ResolveParams(map[string]string{errack.ParamEmfName: "errack"}, units)
		require.NoError(t, err)
		assert.False(t, p.SingleRun)
		assert.Equal(t, errack.DefaultNextRun, p.NextRun)
	})

	t.Run("unparseable SingleRun means recurring", func(t *testing.T) {
		p, err := errack.ResolveParams(map[string]string{
			errack.ParamEmfName:   "errack",
			errack.ParamSingleRun: "yes please",
		}, units)
		require.NoError(t, err)
		assert.False(t, p.SingleRun)
	})

	t.Run("missing EmfName", func(t *testing.T) {
		_, err := errack.ResolveParams(map[string]string{errack.ParamNextRun: "1h"}, units)
		var cfgErr *errack.ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, errack.ParamEmfName, cfgErr.Param)
		assert.True(t, errors.Is(err, errack.ErrMissingParam))
	})

	t.Run("unknown EmfName", func(t *testing.T) {
		_, err := errack.ResolveParams(map[string]string{errack.ParamEmfName: "nope"}, units)
		assert.True(t, errors.Is(err, errack.ErrUnknownUnit))
		assert.Equal(t, `unknown persistence unit: EmfName="nope"`, err.Error())
	})

	t.Run("malformed NextRun", func(t *testing.T) {
		_, err := errack.ResolveParams(map[string]string{
			errack.ParamEmfName: "errack",
			errack.ParamNextRun: "soon",
		}, units)
		var cfgErr *errack.ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, errack.ParamNextRun, cfgErr.Param)
		assert.Equal(t, "soon", cfgErr.Value)
		assert.Equal(t, errack.ErrCodeConfiguration, errack.Kind(err))
	})
}
