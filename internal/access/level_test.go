// AngelaMos | 2026
// level_test.go

package access

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelOrderingIsNumeric(t *testing.T) {
	nine, err := ParseLevel("9")
	require.NoError(t, err)
	ten, err := ParseLevel("10")
	require.NoError(t, err)

	assert.Less(t, nine, ten)

	got := []Level{ten, LevelPremium, nine, LevelFree}
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	assert.Equal(t, []Level{LevelFree, LevelPremium, nine, ten}, got)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "0", want: LevelFree},
		{in: " 3 ", want: LevelPremium},
		{in: "advanced", want: LevelAdvanced},
		{in: "Basic", want: LevelBasic},
		{in: "-1", wantErr: true},
		{in: "gold", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevelLabelAndValid(t *testing.T) {
	assert.Equal(t, "Free", LevelFree.Label())
	assert.Equal(t, "Premium", LevelPremium.Label())
	assert.Equal(t, "Level 7", Level(7).Label())

	assert.True(t, LevelAdvanced.Valid())
	assert.False(t, Level(7).Valid())
	assert.Len(t, Levels(), 4)
	assert.Equal(t, LevelFree, DefaultLevel)
}

func TestLevelScanValue(t *testing.T) {
	var l Level

	require.NoError(t, l.Scan(int64(2)))
	assert.Equal(t, LevelAdvanced, l)

	require.NoError(t, l.Scan([]byte("3")))
	assert.Equal(t, LevelPremium, l)

	require.NoError(t, l.Scan(nil))
	assert.Equal(t, DefaultLevel, l)

	assert.Error(t, l.Scan(1.5))

	v, err := LevelBasic.Value()
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}
