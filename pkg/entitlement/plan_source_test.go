package entitlement_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reqmarket/entitlements/pkg/entitlement"
)

func TestStaticSource(t *testing.T) {
	t.Parallel()

	t.Run("serves the given plans", func(t *testing.T) {
		t.Parallel()

		source := entitlement.NewStaticSource(testPlans()...)

		plans, err := source.Load(context.Background())
		require.NoError(t, err)
		require.Len(t, plans, 3)
		assert.Equal(t, int64(3), plans["free"].MonthlyLimit)
		assert.True(t, plans["premium"].IsUnlimited())
	})

	t.Run("rejects duplicate codes", func(t *testing.T) {
		t.Parallel()

		source := entitlement.NewStaticSource(
			entitlement.Plan{Code: "free", MonthlyLimit: 3},
			entitlement.Plan{Code: "free", MonthlyLimit: 5},
		)

		_, err := source.Load(context.Background())
		assert.Error(t, err)
	})
}

func TestYAMLSource(t *testing.T) {
	t.Parallel()

	writeCatalog := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "plans.yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	t.Run("loads a catalog", func(t *testing.T) {
		t.Parallel()

		path := writeCatalog(t, `
plans:
  - code: free
    name: Free
    monthly_limit: 3
    default: true
  - code: premium
    name: Premium
    monthly_limit: -1
`)

		plans, err := entitlement.NewYAMLSource(path).Load(context.Background())
		require.NoError(t, err)
		require.Len(t, plans, 2)
		assert.True(t, plans["free"].Default)
		assert.Equal(t, int64(3), plans["free"].MonthlyLimit)
		assert.Equal(t, entitlement.Unlimited, plans["premium"].MonthlyLimit)
	})

	t.Run("works end to end with the resolver", func(t *testing.T) {
		t.Parallel()

		path := writeCatalog(t, `
plans:
  - code: free
    monthly_limit: 3
    default: true
`)

		resolver, err := entitlement.NewPlanResolver(context.Background(),
			entitlement.NewYAMLSource(path), nil)
		require.NoError(t, err)
		assert.Equal(t, "free", resolver.DefaultPlan().Code)
	})

	t.Run("rejects duplicate codes", func(t *testing.T) {
		t.Parallel()

		path := writeCatalog(t, `
plans:
  - code: free
    monthly_limit: 3
  - code: free
    monthly_limit: 5
`)

		_, err := entitlement.NewYAMLSource(path).Load(context.Background())
		assert.Error(t, err)
	})

	t.Run("rejects empty plan code", func(t *testing.T) {
		t.Parallel()

		path := writeCatalog(t, `
plans:
  - name: Anonymous
    monthly_limit: 3
`)

		_, err := entitlement.NewYAMLSource(path).Load(context.Background())
		assert.Error(t, err)
	})

	t.Run("missing file fails Load", func(t *testing.T) {
		t.Parallel()

		_, err := entitlement.NewYAMLSource(filepath.Join(t.TempDir(), "nope.yaml")).Load(context.Background())
		assert.Error(t, err)
	})
}
