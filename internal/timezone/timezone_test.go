package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationFallsBack(t *testing.T) {
	assert.Equal(t, "UTC", Location("UTC").String())
	assert.Equal(t, Location(DefaultTimezone).String(), Location("Nowhere/Special").String())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("UTC", "2026-03-04")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("UTC", "04/03/2026")
	assert.Error(t, err)
}

func TestParseHM(t *testing.T) {
	assert.NoError(t, ParseHM("09:30"))
	assert.Error(t, ParseHM("9.30"))
}

func TestFixedClock(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, at, Fixed(at)())
}

func TestCalendarDate(t *testing.T) {
	d, err := CalendarDate("2026-05-01")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, d.Location())
	assert.Equal(t, 1, d.Day())

	_, err = CalendarDate("01/05/2026")
	assert.Error(t, err)

	kl := time.FixedZone("MYT", 8*3600)
	assert.Equal(t, time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC), Today(time.Date(2026, 5, 2, 1, 0, 0, 0, kl)))
}
