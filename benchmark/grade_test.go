package benchmark

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGrade(t *testing.T) {
	tests := []struct {
		label   string
		want    Grade
		wantErr bool
	}{
		{label: "K", want: GradeK},
		{label: "k", want: GradeK},
		{label: " 4 ", want: Grade4},
		{label: "1", want: Grade1},
		{label: "12", want: Grade12},
		{label: "0", wantErr: true},
		{label: "13", wantErr: true},
		{label: "Kindergarten", wantErr: true},
		{label: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			g, err := ParseGrade(tt.label)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, g)
		})
	}
}

func TestGrades_CanonicalOrder(t *testing.T) {
	gg := Grades()
	require.Len(t, gg, 13)

	labels := make([]string, 0, len(gg))
	for _, g := range gg {
		labels = append(labels, g.String())
	}
	assert.Equal(t, []string{"K", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12"}, labels)

	// "10" sorts before "2" as a string, but not as a grade
	assert.Less(t, int(Grade2), int(Grade10))
}

func TestGrade_TextRoundTrip(t *testing.T) {
	type wrapper struct {
		Grade Grade `json:"grade"`
	}
	b, err := json.Marshal(wrapper{Grade: GradeK})
	require.NoError(t, err)
	assert.JSONEq(t, `{"grade":"K"}`, string(b))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"grade":"7"}`), &w))
	assert.Equal(t, Grade7, w.Grade)

	assert.Error(t, json.Unmarshal([]byte(`{"grade":"X"}`), &w))
	_, err = json.Marshal(wrapper{Grade: Grade(20)})
	assert.Error(t, err)
}
