package otfbenchmark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestValidator(t *testing.T) {
	rv, err := newRequestValidator()
	require.NoError(t, err)

	ok := MetricRequest{Subject: "Math", StudentScore: 450, CurrentGrade: "k"}
	assert.NoError(t, rv.Validate(&ok))

	for _, grade := range []string{"", "13", "Year 4", "-1"} {
		bad := MetricRequest{Subject: "Math", StudentScore: 450, CurrentGrade: grade}
		assert.Error(t, rv.Validate(&bad), "grade %q", grade)
	}
}
