package store

import (
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/emulsion/internal/db"
	"github.com/vbonduro/emulsion/internal/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func portraDraft() domain.RollDraft {
	return domain.RollDraft{
		OrderID:           "order-1",
		FilmStockName:     "Kodak Portra 400",
		FilmFormat:        "35mm",
		ExpectedExposures: 36,
		FilmCost:          decimal.RequireFromString("12.50"),
	}
}

func c41Draft() domain.ChemistryDraft {
	mixed := domain.NewDate(2024, 3, 1)
	return domain.ChemistryDraft{
		Name:          "Cinestill Cs41",
		ChemistryType: domain.ChemistryC41,
		DateMixed:     &mixed,
		DeveloperCost: decimal.RequireFromString("10"),
		FixerCost:     decimal.RequireFromString("5"),
	}
}
