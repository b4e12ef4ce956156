package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateRange(t *testing.T) {
	cases := map[string]DateRange{
		"":                AllTime,
		"all":             AllTime,
		"All time":        AllTime,
		"current":         Current,
		"Current content": Current,
		"backfile":        Backfile,
		"Back file":       Backfile,
		"back-file":       Backfile,
	}
	for input, want := range cases {
		got, err := ParseDateRange(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseDateRange("last-week")
	assert.ErrorIs(t, err, ErrUnknownDateRange)
}

func TestDateRangeCycleAndPubYear(t *testing.T) {
	assert.Equal(t, Current, AllTime.Next())
	assert.Equal(t, Backfile, Current.Next())
	assert.Equal(t, AllTime, Backfile.Next())

	assert.Equal(t, "", AllTime.PubYear())
	assert.Equal(t, "current", Current.PubYear())
	assert.Equal(t, "backfile", Backfile.PubYear())
	assert.False(t, DateRange(9).Valid())
}

func TestCoverageDatasetKeepsDocumentOrder(t *testing.T) {
	d := NewCoverageDataset()
	d.Set("Journal articles", []CoverageItem{{Name: "References", Percentage: 40}})
	d.Set("Books", nil)
	d.Set("Journal articles", []CoverageItem{{Name: "References", Percentage: 41}})

	assert.Equal(t, []string{"Journal articles", "Books"}, d.Keys())
	first, ok := d.FirstKey()
	require.True(t, ok)
	assert.Equal(t, "Journal articles", first)

	items, ok := d.Entry("Journal articles")
	require.True(t, ok)
	assert.Equal(t, 41.0, items[0].Percentage)
	assert.True(t, d.Has("Books"))
}

func TestNilCoverageDatasetIsEmpty(t *testing.T) {
	var d *CoverageDataset
	assert.Equal(t, 0, d.Len())
	assert.False(t, d.Has("Books"))
	assert.Nil(t, d.Keys())
	_, ok := d.FirstKey()
	assert.False(t, ok)
}

func TestCombineLoadStates(t *testing.T) {
	assert.Equal(t, LoadStateIdle, CombineLoadStates())
	assert.Equal(t, LoadStateLoading, CombineLoadStates(LoadStateIdle, LoadStateLoading))
	assert.Equal(t, LoadStateLoadedDelayed, CombineLoadStates(LoadStateLoading, LoadStateLoadedDelayed))
	assert.Equal(t, LoadStateLoading, CombineLoadStates(LoadStateError, LoadStateLoading))
	assert.Equal(t, LoadStateError, CombineLoadStates(LoadStateError, LoadStateIdle))
}

func TestPreferredISSN(t *testing.T) {
	assert.Equal(t, "1111-1111", TitleRecord{PISSN: "1111-1111", EISSN: "2222-2222"}.PreferredISSN())
	assert.Equal(t, "2222-2222", TitleRecord{EISSN: "2222-2222"}.PreferredISSN())
	assert.Equal(t, "", TitleRecord{Title: "No identifiers"}.PreferredISSN())
}

func TestSummaryItemsFor(t *testing.T) {
	flat := &Summary{Items: []CoverageItem{{Name: "Abstracts"}}}
	items, ok := flat.ItemsFor("anything")
	require.True(t, ok)
	assert.Len(t, items, 1)

	mapped := &Summary{Coverage: NewCoverageDataset()}
	mapped.Coverage.Set("Books", []CoverageItem{{Name: "Licenses"}})
	_, ok = mapped.ItemsFor("Journal articles")
	assert.False(t, ok)
}

func TestFetchErrorMatchesNetworkFailure(t *testing.T) {
	cause := errors.New("connection refused")
	err := error(&FetchError{Op: "participation-summary", URL: "http://example", Err: cause})

	assert.ErrorIs(t, err, ErrNetworkFailure)
	assert.ErrorIs(t, err, cause)

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "participation-summary", fe.Op)
	assert.Contains(t, (&FetchError{Op: "members", URL: "u", StatusCode: 503}).Error(), "503")
}
