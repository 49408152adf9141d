package co2

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleData = `# --------------------------------------------------------------------
# USE OF NOAA GML DATA
#
# CO2 expressed as a mole fraction in dry air, micromol/mol, abbreviated as ppm
#
#            decimal     monthly    de-season  #days  st.dev  unc. of
# year month    date     average    alized            of days mon mean
1958   3    1958.2027    315.71    314.44    -1   -9.99   -0.99
1958   4    1958.2877    317.45    315.16    -1   -9.99   -0.99
1958   5    1958.3699    317.51    314.69    -1   -9.99   -0.99
1958   6    1958.4548    317.27    315.15    -1   -9.99   -0.99
1958   7    1958.5370    315.87    315.20    -1   -9.99   -0.99
1958   8    1958.6219    314.93    316.21    -1   -9.99   -0.99
`

func TestParseMonthly(t *testing.T) {
	s, err := ParseMonthly(strings.NewReader(sampleData))
	require.NoError(t, err)

	assert.Equal(t, 6, s.Len())
	assert.Equal(t, time.Date(1958, time.March, 1, 0, 0, 0, 0, time.UTC), s.Start())
	assert.Equal(t, time.Date(1958, time.August, 1, 0, 0, 0, 0, time.UTC), s.End())
	assert.Equal(t, 315.71, s.Value(0))
	assert.Equal(t, 314.93, s.Value(5))
}

func TestParseMonthlyMissingAverageFallsBack(t *testing.T) {
	data := `1964   1    1964.0411    319.57    320.25    -1   -9.99   -0.99
1964   2    1964.1257    -99.99    320.73    -1   -9.99   -0.99
1964   3    1964.2049    -99.99    320.87    -1   -9.99   -0.99
1964   4    1964.2896    322.25    321.21    -1   -9.99   -0.99
`
	s, err := ParseMonthly(strings.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 4, s.Len())

	// The de-seasonalized column fills the missing averages.
	assert.Equal(t, 320.73, s.Value(1))
	assert.Equal(t, 320.87, s.Value(2))
}

func TestParseMonthlyRejectsUnusableMonth(t *testing.T) {
	data := `1964   1    1964.0411    319.57    320.25    -1   -9.99   -0.99
1964   2    1964.1257    -99.99    -99.99    -1   -9.99   -0.99
`
	_, err := ParseMonthly(strings.NewReader(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1964-02")
}

func TestParseMonthlyRejectsGaps(t *testing.T) {
	data := `1958   3    1958.2027    315.71    314.44    -1   -9.99   -0.99
1958   5    1958.3699    317.51    314.69    -1   -9.99   -0.99
`
	_, err := ParseMonthly(strings.NewReader(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gap-free")
}

func TestParseMonthlyRejectsMalformedRows(t *testing.T) {
	cases := map[string]string{
		"short row":  "1958 3 1958.2027 315.71\n",
		"bad year":   "xxxx 3 1958.2027 315.71 314.44\n",
		"bad month":  "1958 13 1958.2027 315.71 314.44\n",
		"bad value":  "1958 3 1958.2027 alpha 314.44\n",
		"empty file": "# comments only\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseMonthly(strings.NewReader(data))
			assert.Error(t, err)
		})
	}
}

func TestClientFetchMonthly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleData))
	}))
	defer srv.Close()

	c := NewClient(WithURL(srv.URL), WithHTTPClient(srv.Client()))
	s, err := c.FetchMonthly(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, s.Len())
}

func TestClientFetchMonthlyServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(WithURL(srv.URL))
	_, err := c.FetchMonthly(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestClientFetchMonthlyContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := NewClient(WithURL(srv.URL))
	_, err := c.FetchMonthly(ctx)
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "co2_mm_mlo.txt")
	require.NoError(t, os.WriteFile(path, []byte(sampleData), 0o644))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 6, s.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
