package entitlement_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reqmarket/entitlements/pkg/entitlement"
)

func TestPeriodOf(t *testing.T) {
	t.Parallel()

	t.Run("formats as YYYYMM", func(t *testing.T) {
		t.Parallel()

		p := entitlement.PeriodOf(time.Date(2025, time.July, 15, 12, 0, 0, 0, time.UTC))
		assert.Equal(t, entitlement.Period("202507"), p)
	})

	t.Run("zero-pads the month", func(t *testing.T) {
		t.Parallel()

		p := entitlement.PeriodOf(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, entitlement.Period("202501"), p)
	})

	t.Run("computes in UTC regardless of local zone", func(t *testing.T) {
		t.Parallel()

		// 2025-07-31 23:30 in UTC-5 is already August in UTC.
		loc := time.FixedZone("UTC-5", -5*60*60)
		p := entitlement.PeriodOf(time.Date(2025, time.July, 31, 23, 30, 0, 0, loc))
		assert.Equal(t, entitlement.Period("202508"), p)
	})
}

func TestParsePeriod(t *testing.T) {
	t.Parallel()

	t.Run("accepts valid periods", func(t *testing.T) {
		t.Parallel()

		for _, s := range []string{"202501", "202512", "199901", "000101"} {
			p, err := entitlement.ParsePeriod(s)
			require.NoError(t, err, s)
			assert.Equal(t, entitlement.Period(s), p)
		}
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		t.Parallel()

		for _, s := range []string{"", "2025", "2025-07", "20250700", "2025ab", "202500", "202513", "abcdef"} {
			_, err := entitlement.ParsePeriod(s)
			assert.ErrorIs(t, err, entitlement.ErrInvalidPeriod, s)
		}
	})
}

func TestPeriodNext(t *testing.T) {
	t.Parallel()

	assert.Equal(t, entitlement.Period("202508"), entitlement.Period("202507").Next())
	assert.Equal(t, entitlement.Period("202601"), entitlement.Period("202512").Next())
}

func TestPeriodBefore(t *testing.T) {
	t.Parallel()

	assert.True(t, entitlement.Period("202507").Before("202508"))
	assert.True(t, entitlement.Period("202512").Before("202601"))
	assert.False(t, entitlement.Period("202508").Before("202507"))
	assert.False(t, entitlement.Period("202507").Before("202507"))
}
