package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"carmatch_backend/internal/common"
	"carmatch_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUpstream struct {
	makeCalls  atomic.Int32
	modelCalls atomic.Int32
	makes      []Make
	models     map[string][]Model
	err        error
}

func (f *fakeUpstream) FetchMakes(context.Context) ([]Make, error) {
	f.makeCalls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.makes, nil
}

func (f *fakeUpstream) FetchModels(_ context.Context, makeName string) ([]Model, error) {
	f.modelCalls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.models[makeName], nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func setupCatalog(up Upstream, maxMakes int) (*CachedService, *clock) {
	cfg := &config.Config{CatalogCacheTTL: time.Hour, CatalogCacheMaxMakes: maxMakes}
	s := NewCachedService(up, cfg, zap.NewNop())
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s.now = c.now
	return s, c
}

func TestListMakes_ReadThroughAndExpiry(t *testing.T) {
	up := &fakeUpstream{makes: []Make{{ID: 474, Name: "Honda", Slug: "honda"}}}
	s, clk := setupCatalog(up, 10)
	ctx := context.Background()

	first, err := s.ListMakes(ctx)
	require.NoError(t, err)
	second, err := s.ListMakes(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), up.makeCalls.Load())

	clk.t = clk.t.Add(time.Hour + time.Second)
	_, err = s.ListMakes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), up.makeCalls.Load())
}

func TestListMakes_StaleOnUpstreamFailure(t *testing.T) {
	up := &fakeUpstream{makes: []Make{{Name: "Honda", Slug: "honda"}}}
	s, clk := setupCatalog(up, 10)
	ctx := context.Background()

	_, err := s.ListMakes(ctx)
	require.NoError(t, err)

	up.err = errors.New("vpic down")
	clk.t = clk.t.Add(2 * time.Hour)

	makes, err := s.ListMakes(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Honda", makes[0].Name)
}

func TestListMakes_UpstreamUnavailableWhenNothingCached(t *testing.T) {
	s, _ := setupCatalog(&fakeUpstream{err: errors.New("vpic down")}, 10)

	_, err := s.ListMakes(context.Background())

	assert.ErrorIs(t, err, common.ErrUpstreamUnavailable)
}

func TestListModels_BoundedByMakes(t *testing.T) {
	up := &fakeUpstream{models: map[string][]Model{
		"Honda":  {{Name: "CR-V"}},
		"Toyota": {{Name: "RAV4"}},
		"Ford":   {{Name: "Escape"}},
	}}
	s, clk := setupCatalog(up, 2)
	ctx := context.Background()

	for _, mk := range []string{"Honda", "Toyota", "Ford"} {
		_, err := s.ListModels(ctx, mk)
		require.NoError(t, err)
		clk.t = clk.t.Add(time.Minute)
	}
	assert.Equal(t, 2, s.models.size())
	assert.Nil(t, s.models.load("honda"), "oldest make should be evicted")
	assert.NotNil(t, s.models.load("ford"))

	calls := up.modelCalls.Load()
	models, err := s.ListModels(ctx, "ford")
	require.NoError(t, err)
	assert.Equal(t, "Escape", models[0].Name)
	assert.Equal(t, calls, up.modelCalls.Load(), "cached by slug regardless of case")
}

func TestListModels_EmptyMake(t *testing.T) {
	s, _ := setupCatalog(&fakeUpstream{}, 2)
	_, err := s.ListModels(context.Background(), "  ")
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
}

func TestVPICClient_DecodesAndSorts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		switch r.URL.Path {
		case "/GetMakesForVehicleType/car":
			_, _ = w.Write([]byte(`{"Count":3,"Results":[{"MakeId":448,"MakeName":"TOYOTA "},{"MakeId":474,"MakeName":"HONDA"},{"MakeId":474,"MakeName":"Honda"}]}`))
		case "/GetModelsForMake/honda":
			_, _ = w.Write([]byte(`{"Count":2,"Results":[{"Model_ID":1,"Model_Name":"Pilot"},{"Model_ID":2,"Model_Name":"CR-V"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewVPICClient(srv.URL+"/", time.Second)
	ctx := context.Background()

	makes, err := c.FetchMakes(ctx)
	require.NoError(t, err)
	require.Len(t, makes, 2)
	assert.Equal(t, "honda", makes[0].Slug)
	assert.Equal(t, "TOYOTA", makes[1].Name)

	models, err := c.FetchModels(ctx, "Honda")
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "CR-V", models[0].Name)
}

func TestVPICClient_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewVPICClient(srv.URL, time.Second).FetchMakes(context.Background())
	assert.ErrorContains(t, err, "503")
}
