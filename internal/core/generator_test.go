package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorSpecUnmarshalJSON(t *testing.T) {
	t.Run("sequence", func(t *testing.T) {
		var g GeneratorSpec
		err := json.Unmarshal([]byte(`{"kind":"sequence","start":1,"step":1}`), &g)
		require.NoError(t, err)
		assert.Equal(t, GenSequence, g.Kind)
		require.NotNil(t, g.Sequence)
		assert.Equal(t, int64(1), g.Sequence.Start)
		assert.Nil(t, g.Choice)
	})

	t.Run("unknown kind rejected", func(t *testing.T) {
		var g GeneratorSpec
		err := json.Unmarshal([]byte(`{"kind":"bogus"}`), &g)
		require.Error(t, err)
		var specErr *SpecError
		require.ErrorAs(t, err, &specErr)
		assert.Equal(t, KindSpecInvalid, specErr.Kind)
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		var g GeneratorSpec
		err := json.Unmarshal([]byte(`{"kind":"sequence","start":1,"step":1,"bogus":true}`), &g)
		assert.Error(t, err)
	})

	t.Run("distribution requires clamp but tolerates missing optional fields", func(t *testing.T) {
		var g GeneratorSpec
		err := json.Unmarshal([]byte(`{"kind":"distribution","name":"normal","mean":0,"std":1,"clamp":[-3,3]}`), &g)
		require.NoError(t, err)
		assert.Equal(t, [2]float64{-3, 3}, g.Distribution.Clamp)
	})
}

func TestGeneratorSpecRoundTrip(t *testing.T) {
	g := GeneratorSpec{Kind: GenEnumList, EnumList: &EnumListParams{Values: []string{"a", "b"}}}
	data, err := json.Marshal(g)
	require.NoError(t, err)

	var decoded GeneratorSpec
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, g.Kind, decoded.Kind)
	assert.Equal(t, g.EnumList.Values, decoded.EnumList.Values)
}
