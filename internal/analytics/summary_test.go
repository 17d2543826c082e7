package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestSummarizeEmptyRecord(t *testing.T) {
	rec := NewRecord("abc", 100)
	s := rec.Summarize()

	assert.Equal(t, uint32(0), s.TotalViews)
	assert.Nil(t, s.FirstViewed)
	assert.Nil(t, s.LastViewed)
	assert.Equal(t, []string{}, s.UniqueCountries)
	assert.Equal(t, Breakdown{}, s.DeviceBreakdown)
}

func TestSummarizeFirstAndLastViewed(t *testing.T) {
	rec := NewRecord("abc", 100)
	rec.AddEvent(Event{Timestamp: 100})
	rec.AddEvent(Event{Timestamp: 200})
	rec.AddEvent(Event{Timestamp: 300})

	s := rec.Summarize()
	require.NotNil(t, s.FirstViewed)
	require.NotNil(t, s.LastViewed)
	assert.Equal(t, uint64(100), *s.FirstViewed)
	assert.Equal(t, uint64(300), *s.LastViewed)
}

func TestSummarizeTotalViewsCopiedFromCounter(t *testing.T) {
	rec := NewRecord("abc", 100)
	for i := 0; i < 5; i++ {
		rec.AddEvent(Event{Timestamp: uint64(i)})
	}
	require.Len(t, rec.Events, 5)
	assert.Equal(t, uint32(5), rec.TotalViews)
	assert.Equal(t, uint32(5), rec.Summarize().TotalViews)
}

func TestSummarizeUniqueCountriesSortedAndDeduplicated(t *testing.T) {
	rec := NewRecord("abc", 100)
	rec.AddEvent(Event{Timestamp: 1, Country: strp("SE")})
	rec.AddEvent(Event{Timestamp: 2})
	rec.AddEvent(Event{Timestamp: 3, Country: strp("DE")})
	rec.AddEvent(Event{Timestamp: 4, Country: strp("SE")})
	rec.AddEvent(Event{Timestamp: 5, Country: strp("AT")})

	s := rec.Summarize()
	assert.Equal(t, []string{"AT", "DE", "SE"}, s.UniqueCountries)
}

func TestSummarizeDeviceBreakdown(t *testing.T) {
	rec := NewRecord("abc", 100)
	rec.AddEvent(Event{Timestamp: 1, DeviceType: strp(DeviceMobile)})
	rec.AddEvent(Event{Timestamp: 2, DeviceType: strp(DeviceMobile)})
	rec.AddEvent(Event{Timestamp: 3, DeviceType: strp(DeviceDesktop)})
	rec.AddEvent(Event{Timestamp: 4, DeviceType: strp(DeviceTablet)})
	rec.AddEvent(Event{Timestamp: 5}) // absent classification counts as unknown
	rec.AddEvent(Event{Timestamp: 6, DeviceType: strp("smartwatch")})

	s := rec.Summarize()
	assert.Equal(t, Breakdown{Mobile: 2, Desktop: 1, Tablet: 1, Unknown: 2}, s.DeviceBreakdown)
}

func TestEmptySummaryMarshalsWithEmptyCountries(t *testing.T) {
	s := EmptySummary()
	assert.NotNil(t, s.UniqueCountries)
	assert.Empty(t, s.UniqueCountries)
}
