package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nordicFixture = `{
	"orgNumber": "1234567-8",
	"legalName": "Konepaja Virtanen Oy",
	"industry": "Metallituotteiden valmistus",
	"website": "https://virtanen.fi",
	"email": "info@virtanen.fi",
	"phone": "+358 40 1234567",
	"employees": 45,
	"revenueEur": 8200000,
	"address": {"street": "Teollisuuskatu 5", "zip": "33100", "city": "Tampere"},
	"products": [
		{"name": "V-500", "description": "CNC-työstökone", "category": "Koneet"},
		{"name": "V-200", "description": "", "category": "Koneet"}
	]
}`

func newNordicTest(t *testing.T, handler http.HandlerFunc) *NordicClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewNordic(SourceConfig{BaseURL: srv.URL, RatePerSec: 1000, Burst: 1000}, srv.Client())
	fastRetries(&c.httpSource)
	return c
}

func TestNordicFetchByIDMapsProducts(t *testing.T) {
	c := newNordicTest(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/companies/1234567-8", r.URL.Path)
		assert.Equal(t, "FI", r.URL.Query().Get("country"))
		w.Write([]byte(nordicFixture)) //nolint:errcheck
	})

	rec, err := c.FetchByID(context.Background(), "1234567-8")
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, SourceNordic, rec.Source)
	assert.Equal(t, "Konepaja Virtanen Oy", rec.Name)
	assert.Equal(t, "https://virtanen.fi", rec.Website)
	assert.Equal(t, "Tampere", rec.City)
	require.NotNil(t, rec.EmployeeCount)
	assert.Equal(t, 45, *rec.EmployeeCount)

	require.Len(t, rec.Products, 2)
	assert.Equal(t, "V-500", rec.Products[0].Name)
	assert.InDelta(t, 0.6, rec.Products[0].Confidence, 1e-9)
}

func TestNordicFetchByIDMissing(t *testing.T) {
	c := newNordicTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec, err := c.FetchByID(context.Background(), "9999999-9")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestNordicSearch(t *testing.T) {
	c := newNordicTest(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "virtanen", r.URL.Query().Get("q"))
		w.Write([]byte(`{"hits": [` + nordicFixture + `]}`)) //nolint:errcheck
	})

	records, err := c.Search(context.Background(), "virtanen")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "1234567-8", records[0].BusinessID)
}
