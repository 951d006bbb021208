package registry

import (
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/theoremus-urban-solutions/transit-fusion/errs"
	"github.com/theoremus-urban-solutions/transit-fusion/gtfsrt"
)

func TestNew_SeedsBuiltins(t *testing.T) {
	r := New(t.TempDir(), zap.NewNop())

	got := maps.Collect(r.ListAgencies())
	assert.GreaterOrEqual(t, len(got), 8)
	for _, code := range []string{"wmata", "mta", "bart", "cta", "lametro", "mbta", "kingcounty", "septa"} {
		assert.Contains(t, got, code)
	}
	assert.Equal(t, "Washington DC Metro", got["wmata"])
}

func TestNew_BuiltinBoxesDoNotOverlap(t *testing.T) {
	var boxes []BoundingBox
	for _, f := range defaultFeeds {
		require.NotNil(t, f.BBox, f.Code)
		require.NoError(t, f.BBox.Validate())
		boxes = append(boxes, *f.BBox)
	}
	for i := range boxes {
		for j := i + 1; j < len(boxes); j++ {
			a, b := boxes[i], boxes[j]
			overlap := a.MinLat <= b.MaxLat && b.MinLat <= a.MaxLat && a.MinLon <= b.MaxLon && b.MinLon <= a.MaxLon
			assert.False(t, overlap, "%s overlaps %s", defaultFeeds[i].Code, defaultFeeds[j].Code)
		}
	}
}

func TestSelectByLocation(t *testing.T) {
	r := New(t.TempDir(), zap.NewNop())

	tests := []struct {
		name     string
		lat, lon float64
		want     string
		wantOK   bool
	}{
		{name: "washington dc", lat: 38.90, lon: -77.03, want: "wmata", wantOK: true},
		{name: "manhattan", lat: 40.75, lon: -73.99, want: "mta", wantOK: true},
		{name: "boston", lat: 42.35, lon: -71.06, want: "mbta", wantOK: true},
		{name: "box edge is inclusive", lat: 38.79, lon: -77.47, want: "wmata", wantOK: true},
		{name: "null island", lat: 0, lon: 0, wantOK: false},
		{name: "just outside dc", lat: 38.78, lon: -77.03, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.SelectByLocation(tt.lat, tt.lon)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegister(t *testing.T) {
	r := New(t.TempDir(), zap.NewNop())

	trimet := FeedConfig{
		Code:      "trimet",
		Name:      "TriMet",
		StaticURL: "https://developer.trimet.org/schedule/gtfs.zip",
		BBox:      &BoundingBox{MinLat: 45.25, MaxLat: 45.65, MinLon: -123.2, MaxLon: -122.3},
	}
	require.NoError(t, r.Register(trimet))

	code, ok := r.SelectByLocation(45.52, -122.68)
	require.True(t, ok)
	assert.Equal(t, "trimet", code)

	got, err := r.Get("trimet")
	require.NoError(t, err)
	assert.Equal(t, gtfsrt.DefaultHeader, got.KeyHeader())
	assert.False(t, got.HasRealtime())

	err = r.Register(trimet)
	assert.ErrorIs(t, err, errs.ErrDuplicateAgency)

	err = r.Register(FeedConfig{Code: "wmata", Name: "dup", StaticURL: "https://example.com/g.zip"})
	assert.ErrorIs(t, err, errs.ErrDuplicateAgency)
}

func TestRegister_Invalid(t *testing.T) {
	r := New(t.TempDir(), zap.NewNop())

	err := r.Register(FeedConfig{Name: "nameless", StaticURL: "https://example.com/g.zip"})
	assert.ErrorIs(t, err, errs.ErrInvalidConfig)

	tests := []struct {
		name string
		cfg  FeedConfig
	}{
		{name: "missing static url", cfg: FeedConfig{Code: "nourl"}},
		{name: "static url not a url", cfg: FeedConfig{Code: "bad", StaticURL: "gtfs.zip"}},
		{name: "realtime url not a url", cfg: FeedConfig{Code: "bad", StaticURL: "https://example.com/g.zip", AlertsURL: "alerts"}},
		{name: "inverted latitude", cfg: FeedConfig{Code: "inv", StaticURL: "https://example.com/g.zip", BBox: &BoundingBox{MinLat: 10, MaxLat: 5}}},
		{name: "inverted longitude", cfg: FeedConfig{Code: "inv", StaticURL: "https://example.com/g.zip", BBox: &BoundingBox{MinLon: 10, MaxLon: 5}}},
		{name: "latitude off the globe", cfg: FeedConfig{Code: "inv", StaticURL: "https://example.com/g.zip", BBox: &BoundingBox{MinLat: 10, MaxLat: 95}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Register(tt.cfg)
			assert.ErrorIs(t, err, errs.ErrInvalidConfig)
			_, err = r.Get(tt.cfg.Code)
			assert.ErrorIs(t, err, errs.ErrUnknownAgency)
		})
	}
}

func TestRegister_CopiesBoundingBox(t *testing.T) {
	r := New(t.TempDir(), zap.NewNop())
	bb := &BoundingBox{MinLat: 45.25, MaxLat: 45.65, MinLon: -123.2, MaxLon: -122.3}
	require.NoError(t, r.Register(FeedConfig{Code: "trimet", StaticURL: "https://example.com/g.zip", BBox: bb}))

	bb.MinLat, bb.MaxLat = 0, 1
	got, err := r.Get("trimet")
	require.NoError(t, err)
	assert.Equal(t, 45.25, got.BBox.MinLat)

	code, ok := r.SelectByLocation(45.52, -122.68)
	require.True(t, ok)
	assert.Equal(t, "trimet", code)
}

func TestGet_Unknown(t *testing.T) {
	r := New(t.TempDir(), zap.NewNop())
	_, err := r.Get("atlantis")
	assert.ErrorIs(t, err, errs.ErrUnknownAgency)
}

func TestListAgencies_StopsEarly(t *testing.T) {
	r := New(t.TempDir(), zap.NewNop())
	n := 0
	for range r.ListAgencies() {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}
