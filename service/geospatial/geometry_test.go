package geospatial

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(cx, cy, half float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{cx - half, cy - half},
		{cx + half, cy - half},
		{cx + half, cy + half},
		{cx - half, cy + half},
		{cx - half, cy - half},
	}}
}

func TestRepresentativePoint(t *testing.T) {
	p := orb.Point{-76.53, 3.42}
	assert.Equal(t, p, RepresentativePoint(p))

	center := RepresentativePoint(square(-76.53, 3.42, 0.01))
	assert.InDelta(t, -76.53, center.Lon(), 1e-9)
	assert.InDelta(t, 3.42, center.Lat(), 1e-9)
}

func TestIsDegenerate(t *testing.T) {
	assert.True(t, IsDegenerate(orb.Point{0, 0}))
	assert.True(t, IsDegenerate(orb.Point{-200, 3.4}))
	assert.True(t, IsDegenerate(orb.Point{-76.5, 95}))
	assert.False(t, IsDegenerate(orb.Point{-76.53, 3.42}))
	assert.False(t, IsDegenerate(orb.Point{-76.53, 0}))
}

func TestCheckGeometry(t *testing.T) {
	t.Run("points and lines", func(t *testing.T) {
		assert.NoError(t, CheckGeometry(orb.Point{-76.5, 3.4}))
		assert.NoError(t, CheckGeometry(orb.LineString{{-76.5, 3.4}, {-76.51, 3.41}}))
		assert.Error(t, CheckGeometry(orb.LineString{{-76.5, 3.4}}))
	})

	t.Run("valid polygon", func(t *testing.T) {
		assert.NoError(t, CheckGeometry(square(-76.53, 3.42, 0.01)))
	})

	t.Run("unclosed ring", func(t *testing.T) {
		open := orb.Polygon{orb.Ring{
			{-76.54, 3.41}, {-76.52, 3.41}, {-76.52, 3.43}, {-76.54, 3.43},
		}}
		err := CheckGeometry(open)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not closed")
	})

	t.Run("too few positions", func(t *testing.T) {
		tiny := orb.Polygon{orb.Ring{{-76.54, 3.41}, {-76.52, 3.41}, {-76.54, 3.41}}}
		err := CheckGeometry(tiny)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 4")
	})

	t.Run("self-intersecting bowtie", func(t *testing.T) {
		bowtie := orb.Polygon{orb.Ring{
			{0, 0}, {2, 2}, {2, 0}, {0, 2}, {0, 0},
		}}
		err := CheckGeometry(bowtie)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "self-intersects")
	})

	t.Run("multipolygon reports the failing member", func(t *testing.T) {
		mp := orb.MultiPolygon{
			square(-76.53, 3.42, 0.01),
			{orb.Ring{{0, 0}, {2, 2}, {2, 0}, {0, 2}, {0, 0}}},
		}
		err := CheckGeometry(mp)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "polygon 1")
	})
}

func TestLayerContains(t *testing.T) {
	layer := NewLayer("comunas", map[string]orb.Geometry{
		"Comuna 19": square(-76.54, 3.42, 0.02),
		"El Peñón":  square(-76.50, 3.45, 0.01),
	})

	t.Run("inside", func(t *testing.T) {
		contained, found := layer.Contains("Comuna 19", orb.Point{-76.54, 3.42})
		assert.True(t, found)
		assert.True(t, contained)
	})

	t.Run("outside", func(t *testing.T) {
		contained, found := layer.Contains("Comuna 19", orb.Point{-76.40, 3.42})
		assert.True(t, found)
		assert.False(t, contained)
	})

	t.Run("accent and case insensitive lookup", func(t *testing.T) {
		contained, found := layer.Contains("el penon", orb.Point{-76.50, 3.45})
		assert.True(t, found)
		assert.True(t, contained)
	})

	t.Run("unknown unit", func(t *testing.T) {
		_, found := layer.Contains("Comuna 99", orb.Point{-76.54, 3.42})
		assert.False(t, found)
	})
}

func TestBoundaryIndexNilLayers(t *testing.T) {
	index := NewBoundaryIndex(nil, nil)

	_, found := index.ComunaContains("Comuna 19", orb.Point{-76.54, 3.42})
	assert.False(t, found)
	_, found = index.BarrioContains("El Lido", orb.Point{-76.54, 3.42})
	assert.False(t, found)
}

func TestFoldName(t *testing.T) {
	assert.Equal(t, "el penon", foldName("  El   Peñón "))
	assert.Equal(t, foldName("COMUNA 19"), foldName("comuna 19"))
}
