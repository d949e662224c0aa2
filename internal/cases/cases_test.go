package cases

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casegen/internal/tables"
)

func profiles(names ...string) []tables.Profile {
	out := make([]tables.Profile, len(names))
	for i, n := range names {
		out[i] = tables.Profile{Name: n}
	}
	return out
}

func conditions(names ...string) []tables.Condition {
	out := make([]tables.Condition, len(names))
	for i, n := range names {
		out[i] = tables.Condition{Name: n}
	}
	return out
}

var naming = Naming{Base: "base", Separator: "_", Extension: "yaml"}

func TestBuildCrossProduct(t *testing.T) {
	for _, size := range [][2]int{{1, 1}, {1, 4}, {3, 1}, {3, 4}} {
		t.Run(fmt.Sprintf("%dx%d", size[0], size[1]), func(t *testing.T) {
			var ps, cs []string
			for i := 0; i < size[0]; i++ {
				ps = append(ps, fmt.Sprintf("P%d", i))
			}
			for j := 0; j < size[1]; j++ {
				cs = append(cs, fmt.Sprintf("C%d", j))
			}

			result, err := Build(naming, profiles(ps...), conditions(cs...))
			require.NoError(t, err)
			require.Len(t, result, size[0]*size[1])

			pairs := make(map[string]int)
			for i, c := range result {
				assert.Equal(t, i, c.Index)
				pairs[c.ID()]++
			}
			for _, p := range ps {
				for _, c := range cs {
					assert.Equal(t, 1, pairs[p+"/"+c], "pair %s/%s", p, c)
				}
			}
		})
	}
}

func TestBuildOrderIsProfileMajor(t *testing.T) {
	result, err := Build(naming, profiles("P2030", "P2035"), conditions("S-HP", "S-LP"))
	require.NoError(t, err)

	var names []string
	for _, c := range result {
		names = append(names, c.ArtifactName)
	}
	assert.Equal(t, []string{
		"base_P2030_S-HP.yaml",
		"base_P2030_S-LP.yaml",
		"base_P2035_S-HP.yaml",
		"base_P2035_S-LP.yaml",
	}, names)
	assert.Equal(t, "base_P2030_S-HP", result[0].Name)
}

func TestBuildErrors(t *testing.T) {
	t.Run("empty profiles", func(t *testing.T) {
		_, err := Build(naming, nil, conditions("C1"))
		assert.ErrorIs(t, err, ErrEmptyAxis)
	})

	t.Run("empty conditions", func(t *testing.T) {
		_, err := Build(naming, profiles("P1"), nil)
		var axisErr *EmptyAxisError
		require.True(t, errors.As(err, &axisErr))
		assert.Equal(t, "conditions", axisErr.Axis)
	})

	t.Run("conditions collide after sanitizing", func(t *testing.T) {
		_, err := Build(naming, profiles("P1"), conditions("S/HP", "S:HP"))
		var dupErr *DuplicateCaseNameError
		require.True(t, errors.As(err, &dupErr))
		assert.Equal(t, "base_P1_S-HP", dupErr.Name)
		assert.Equal(t, "P1/S/HP", dupErr.First)
		assert.Equal(t, "P1/S:HP", dupErr.Second)
	})

	t.Run("collision ignores case", func(t *testing.T) {
		_, err := Build(naming, profiles("High", "HIGH"), conditions("C1"))
		var dupErr *DuplicateCaseNameError
		assert.True(t, errors.As(err, &dupErr))
	})

	t.Run("duplicate profile names", func(t *testing.T) {
		_, err := Build(naming, profiles("P1", "P1"), conditions("C1"))
		var dupErr *DuplicateCaseNameError
		assert.True(t, errors.As(err, &dupErr))
	})

	t.Run("name empty after sanitizing", func(t *testing.T) {
		_, err := Build(naming, profiles("..."), conditions("C1"))
		var emptyErr *EmptyCaseNameError
		require.True(t, errors.As(err, &emptyErr))
		assert.Equal(t, "profile", emptyErr.Axis)
	})
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"S-HP", "S-HP"},
		{"S/HP", "S-HP"},
		{`a<b>c:d"e\f|g?h*i`, "a-b-c-d-e-f-g-h-i"},
		{"High_Rate", "High-Rate"},
		{" trailing. ", "trailing"},
		{"tab\there", "tab-here"},
		{"Winter 2030", "Winter 2030"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in, "_"))
		})
	}
}
