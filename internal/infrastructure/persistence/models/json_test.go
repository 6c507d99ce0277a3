package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name string `json:"name"`
}

func TestJSON_Value(t *testing.T) {
	v, err := NewJSON([]sample{{Name: "a"}}).Value()
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"a"}]`, v)

	v, err = NewJSON[*sample](nil).Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestJSON_Scan(t *testing.T) {
	t.Run("bytes and strings", func(t *testing.T) {
		var j JSON[[]sample]
		require.NoError(t, j.Scan([]byte(`[{"name":"a"}]`)))
		assert.Equal(t, []sample{{Name: "a"}}, j.V)

		require.NoError(t, j.Scan(`[{"name":"b"}]`))
		assert.Equal(t, []sample{{Name: "b"}}, j.V)
	})

	t.Run("null resets the value", func(t *testing.T) {
		j := NewJSON(&sample{Name: "a"})
		require.NoError(t, j.Scan(nil))
		assert.Nil(t, j.V)
	})

	t.Run("unsupported type", func(t *testing.T) {
		var j JSON[sample]
		assert.Error(t, j.Scan(42))
	})

	t.Run("invalid json", func(t *testing.T) {
		var j JSON[sample]
		assert.Error(t, j.Scan(`{`))
	})
}
