package channels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cherr "chanio/internal/errors"
)

func TestMapMode_Distinct(t *testing.T) {
	modes := MapModes()
	require.Len(t, modes, 3)

	for i, a := range modes {
		for j, b := range modes {
			if i == j {
				assert.Equal(t, a, b, "%s should equal itself", a)
			} else {
				assert.NotEqual(t, a, b, "%s and %s should differ", a, b)
			}
		}
	}
}

func TestMapMode_String(t *testing.T) {
	tests := []struct {
		mode MapMode
		want string
	}{
		{MapPrivate, "PRIVATE"},
		{MapReadOnly, "READ_ONLY"},
		{MapReadWrite, "READ_WRITE"},
		{MapMode(0), "MapMode(0)"},
		{MapMode(9), "MapMode(9)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.mode.String())
		})
	}

	for _, m := range MapModes() {
		assert.NotEmpty(t, m.String())
		assert.True(t, m.Valid())
	}
	assert.False(t, MapMode(0).Valid())
}

func TestMapMode_Predicates(t *testing.T) {
	assert.True(t, MapPrivate.Writable())
	assert.False(t, MapPrivate.Shared())

	assert.False(t, MapReadOnly.Writable())
	assert.True(t, MapReadOnly.Shared())

	assert.True(t, MapReadWrite.Writable())
	assert.True(t, MapReadWrite.Shared())
}

func TestParseMapMode(t *testing.T) {
	tests := []struct {
		in      string
		want    MapMode
		wantErr bool
	}{
		{"PRIVATE", MapPrivate, false},
		{"read_only", MapReadOnly, false},
		{"read-write", MapReadWrite, false},
		{"  READ_WRITE ", MapReadWrite, false},
		{"", 0, true},
		{"shared", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMapMode(tt.in)
			if tt.wantErr {
				var cfgErr *cherr.ConfigError
				require.ErrorAs(t, err, &cfgErr)
				assert.Equal(t, "map-mode", cfgErr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapMode_Text(t *testing.T) {
	text, err := MapReadOnly.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "READ_ONLY", string(text))

	var m MapMode
	require.NoError(t, m.UnmarshalText([]byte("private")))
	assert.Equal(t, MapPrivate, m)

	_, err = MapMode(0).MarshalText()
	assert.Error(t, err)
	assert.Error(t, m.UnmarshalText([]byte("nope")))
	assert.Equal(t, MapPrivate, m, "failed unmarshal must not modify the mode")
}
