package policy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"salonpos/internal/core/types"
)

func TestClassify(t *testing.T) {
	c, err := NewDeviationClassifier(DefaultWarningExpr, DefaultCriticalExpr)
	require.NoError(t, err)

	tests := []struct {
		name     string
		expected string
		counted  string
		want     DeviationClass
	}{
		{"exact match", "250.00", "250.00", DeviationNormal},
		{"tiny shortage", "250.00", "248.00", DeviationNormal},
		{"over warning threshold", "250.00", "242.00", DeviationWarning},
		{"surplus also flagged", "250.00", "258.00", DeviationWarning},
		{"critical shortage", "250.00", "180.00", DeviationCritical},
		{"critical by percent", "100.00", "92.00", DeviationCritical},
		{"zero expected avoids div by zero", "0.00", "3.00", DeviationNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Classify(types.MustMoney(tt.expected), types.MustMoney(tt.counted))
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestNewDeviationClassifier_BadExpressions(t *testing.T) {
	_, err := NewDeviationClassifier("deviation_abs >", DefaultCriticalExpr)
	require.Error(t, err)

	// Non-bool output must be rejected at compile time.
	_, err = NewDeviationClassifier("deviation_abs + 1.0", DefaultCriticalExpr)
	require.Error(t, err)
}
