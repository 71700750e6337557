package remote_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/emulsion/internal/db"
	"github.com/vbonduro/emulsion/internal/domain"
	"github.com/vbonduro/emulsion/internal/remote"
	"github.com/vbonduro/emulsion/internal/service"
	"github.com/vbonduro/emulsion/internal/store"
	"github.com/vbonduro/emulsion/internal/web"
)

// newAPI serves the real API over an in-memory database.
func newAPI(t *testing.T) *remote.Client {
	t.Helper()
	database, err := db.OpenForTesting()
	require.NoError(t, err)
	rolls := store.NewRollStore(database)
	chemistry := store.NewChemistryStore(database)
	srv := httptest.NewServer(web.NewServer(
		service.NewRollService(rolls, chemistry, nil, slog.Default()),
		service.NewChemistryService(chemistry, rolls, nil, slog.Default()),
		service.NewStatsService(rolls, chemistry, slog.Default()),
		nil, nil, nil, slog.Default(),
	))
	t.Cleanup(func() {
		srv.Close()
		_ = database.Close()
	})
	return remote.New(srv.URL, 5*time.Second, slog.Default())
}

func draft(stock string) domain.RollDraft {
	return domain.RollDraft{
		OrderID:           "ord-1",
		FilmStockName:     stock,
		FilmFormat:        "120",
		ExpectedExposures: 24,
		FilmCost:          decimal.RequireFromString("12.00"),
	}
}

func TestClientRollLifecycle(t *testing.T) {
	c := newAPI(t)
	ctx := context.Background()

	require.NoError(t, c.Health(ctx))

	r, err := c.CreateRoll(ctx, draft("Portra 160"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNew, r.Status)

	batch, err := c.CreateChemistry(ctx, domain.ChemistryDraft{
		Name:          "Cs41",
		ChemistryType: domain.ChemistryC41,
		DeveloperCost: decimal.NewFromInt(3),
	})
	require.NoError(t, err)

	r, err = c.LoadRoll(ctx, r.ID, domain.NewDate(2024, 6, 1))
	require.NoError(t, err)
	r, err = c.UnloadRoll(ctx, r.ID, domain.NewDate(2024, 6, 2))
	require.NoError(t, err)
	r, err = c.AssignChemistry(ctx, r.ID, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDeveloped, r.Status)
	require.NotNil(t, r.TotalCost)
	assert.True(t, decimal.RequireFromString("15").Equal(*r.TotalCost))

	r, err = c.RateRoll(ctx, r.ID, 5, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScanned, r.Status)
	assert.Nil(t, r.ActualExposures)

	page, err := c.ListRolls(ctx, remote.RollFilter{Search: "portra"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ByStatus[domain.StatusScanned])
}

func TestClientPatchClearsNullFields(t *testing.T) {
	c := newAPI(t)
	ctx := context.Background()
	r, err := c.CreateRoll(ctx, draft("HP5"))
	require.NoError(t, err)
	r, err = c.LoadRoll(ctx, r.ID, domain.NewDate(2024, 6, 1))
	require.NoError(t, err)

	r, err = c.UpdateRoll(ctx, r.ID, domain.RollPatch{
		Status:     domain.To(domain.StatusNew),
		DateLoaded: domain.Null[domain.Date](),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNew, r.Status)
	assert.Nil(t, r.DateLoaded)
	assert.Equal(t, "HP5", r.FilmStockName)
}

func TestClientChemistry(t *testing.T) {
	c := newAPI(t)
	ctx := context.Background()
	b, err := c.CreateChemistry(ctx, domain.ChemistryDraft{
		Name:          "Rodinal",
		ChemistryType: domain.ChemistryBW,
		DeveloperCost: decimal.NewFromInt(20),
	})
	require.NoError(t, err)

	b, err = c.UpdateChemistry(ctx, b.ID, domain.ChemistryPatch{DateRetired: domain.To(domain.NewDate(2024, 7, 1))})
	require.NoError(t, err)
	assert.False(t, b.IsActive)

	active, err := c.ListChemistry(ctx, remote.ChemistryFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, c.DeleteChemistry(ctx, b.ID))
	_, err = c.GetChemistry(ctx, b.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestClientClassifiesFailures(t *testing.T) {
	c := newAPI(t)
	ctx := context.Background()

	_, err := c.GetRoll(ctx, "missing")
	kind, ok := remote.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, remote.KindRejected, kind)

	_, err = c.CreateRoll(ctx, domain.RollDraft{})
	kind, _ = remote.KindOf(err)
	assert.Equal(t, remote.KindValidation, kind)
	var re *remote.Error
	require.True(t, errors.As(err, &re))
	assert.Contains(t, re.Fields, "film_stock_name")
	var ve *domain.ValidationError
	assert.True(t, errors.As(err, &ve))

	r, err := c.CreateRoll(ctx, draft("Gold"))
	require.NoError(t, err)
	_, err = c.RateRoll(ctx, r.ID, 3, nil)
	kind, _ = remote.KindOf(err)
	assert.Equal(t, remote.KindRejected, kind)
	require.True(t, errors.As(err, &re))
	assert.Equal(t, http.StatusConflict, re.Status)
}

func TestClientServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>bad gateway</html>")
	}))
	defer srv.Close()

	_, err := remote.New(srv.URL, time.Second, slog.Default()).GetRoll(context.Background(), "x")
	kind, ok := remote.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, remote.KindUnavailable, kind)
}

func TestClientNetworkErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := remote.New(url, time.Second, slog.Default()).Health(context.Background())
	kind, ok := remote.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, remote.KindUnavailable, kind)
}

func TestClientTimeoutIsUnavailable(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	err := remote.New(srv.URL, 50*time.Millisecond, slog.Default()).Health(context.Background())
	kind, _ := remote.KindOf(err)
	assert.Equal(t, remote.KindUnavailable, kind)
}

func TestClientSendsRatingPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/rolls/abc/rating", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"abc","status":"SCANNED","stars":4,"actual_exposures":30}`)
	}))
	defer srv.Close()

	n := 30
	r, err := remote.New(srv.URL, time.Second, slog.Default()).RateRoll(context.Background(), "abc", 4, &n)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScanned, r.Status)
	assert.Equal(t, map[string]any{"stars": float64(4), "actual_exposures": float64(30)}, got)
}
