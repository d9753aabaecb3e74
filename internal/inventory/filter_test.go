package inventory

import (
	"errors"
	"net/url"
	"testing"

	"linksite/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) Filter {
	t.Helper()
	v, err := url.ParseQuery(raw)
	require.NoError(t, err)
	f, err := ParseFilter(v)
	require.NoError(t, err)
	return f
}

func fieldErrors(t *testing.T, raw string) map[string]string {
	t.Helper()
	v, err := url.ParseQuery(raw)
	require.NoError(t, err)
	return valuesErrors(t, v)
}

func valuesErrors(t *testing.T, v url.Values) map[string]string {
	t.Helper()
	_, err := ParseFilter(v)
	require.Error(t, err)
	var ae *core.AppError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "validation", ae.Code)
	return ae.Fields
}

func TestParseFilter_Defaults(t *testing.T) {
	f := mustParse(t, "")
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, DefaultPerPage, f.PerPage)
	assert.Equal(t, DefaultSort, f.Sort)
	assert.Empty(t, f.Niches)
	assert.Nil(t, f.DoFollow)
	assert.Equal(t, 0, f.Offset())
}

func TestParseFilter_Full(t *testing.T) {
	f := mustParse(t, "q=+Tech+&niche=Tech,Finance&niche=tech&country=de&language=EN&dr_min=30&dr_max=80&traffic_min=1000&price_min=50&price_max=300.5&dofollow=true&sort=price_asc&page=3&per_page=10")

	assert.Equal(t, "Tech", f.Query)
	assert.Equal(t, []string{"tech", "finance"}, f.Niches)
	assert.Equal(t, "DE", f.Country)
	assert.Equal(t, "en", f.Language)
	assert.Equal(t, 30, f.DRMin)
	assert.Equal(t, 80, f.DRMax)
	assert.Equal(t, 1000, f.TrafficMin)
	assert.Equal(t, 50.0, f.PriceMin)
	assert.Equal(t, 300.5, f.PriceMax)
	require.NotNil(t, f.DoFollow)
	assert.True(t, *f.DoFollow)
	assert.Equal(t, SortPriceAsc, f.Sort)
	assert.Equal(t, 20, f.Offset())
}

func TestParseFilter_Errors(t *testing.T) {
	assert.Contains(t, fieldErrors(t, "dr_min=abc"), "dr_min")
	assert.Contains(t, fieldErrors(t, "price_max=x"), "price_max")
	assert.Contains(t, fieldErrors(t, "dofollow=maybe"), "dofollow")
	assert.Contains(t, valuesErrors(t, url.Values{"sort": {"name;DROP TABLE sites"}}), "sort")
	assert.Contains(t, fieldErrors(t, "per_page=1000"), "per_page")
	assert.Contains(t, fieldErrors(t, "page=0"), "page")
	assert.Contains(t, fieldErrors(t, "dr_max=101"), "dr_max")
	assert.Contains(t, fieldErrors(t, "country=deu"), "country")
	assert.Contains(t, fieldErrors(t, "dr_min=70&dr_max=20"), "dr_min")
	assert.Contains(t, fieldErrors(t, "price_min=500&price_max=100"), "price_min")
}

func TestFilter_ValuesRoundTripForPagination(t *testing.T) {
	f := mustParse(t, "niche=tech&dr_min=40&sort=newest")
	assert.Equal(t, "dr_min=40&niche=tech&page=2&sort=newest", f.PageQuery(2))
	assert.Equal(t, "dr_min=40&niche=tech&sort=newest", f.PageQuery(1))

	again, err := ParseFilter(f.Values())
	require.NoError(t, err)
	assert.Equal(t, f, again)
}

func TestPages(t *testing.T) {
	assert.Equal(t, 0, Pages(0, 24))
	assert.Equal(t, 1, Pages(24, 24))
	assert.Equal(t, 2, Pages(25, 24))
	assert.Equal(t, 0, Pages(10, 0))
}
