package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "12.50", want: "12.5"},
		{in: " 3 ", want: "3"},
		{in: "4,20", want: "4.2"},
		{in: "1,000.5", wantErr: true},
		{in: "abc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseMoney(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseItem(t *testing.T) {
	item, err := parseItem("Beer: the good one:12.00:Alcohol")
	require.NoError(t, err)
	assert.Equal(t, "Beer: the good one", item.Name)
	assert.Equal(t, "12", item.Price.String())
	assert.Equal(t, "Alcohol", item.Tag)

	_, err = parseItem("Beer:12")
	assert.Error(t, err)
	_, err = parseItem("Beer:x:Alcohol")
	assert.Error(t, err)
}

func TestParseEventExtra(t *testing.T) {
	x, err := parseEventExtra("Wine:20:A, B,,C")
	require.NoError(t, err)
	assert.Equal(t, "Wine", x.Label)
	assert.Equal(t, []string{"A", "B", "C"}, x.Participants)

	x, err = parseEventExtra("Tip:5:")
	require.NoError(t, err)
	assert.Empty(t, x.Participants)
}

func TestParseStayAndExtra(t *testing.T) {
	s, err := parseStay("Anna:3")
	require.NoError(t, err)
	assert.Equal(t, "Anna", s.User)
	assert.Equal(t, 3, s.Nights)

	_, err = parseStay("Anna")
	assert.Error(t, err)
	_, err = parseStay("Anna:two")
	assert.Error(t, err)

	x, err := parseExtra("Cleaning:30")
	require.NoError(t, err)
	assert.Equal(t, "Cleaning", x.Label)
	assert.Equal(t, "30", x.Price.String())
}
