package vacation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/office-portal-go/internal/pkg/validator"
)

func day(d int) time.Time { return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC) }

func TestTotalDays(t *testing.T) {
	assert.Equal(t, 5, TotalDays(day(10), day(14)))
	assert.Equal(t, 1, TotalDays(day(10), day(10)))
	assert.Equal(t, 2, TotalDays(day(10), day(10).Add(time.Hour)))
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd int
		want                       bool
	}{
		{"disjoint", 1, 3, 5, 7, false},
		{"touching on one day", 1, 5, 5, 7, true},
		{"contained", 1, 10, 3, 4, true},
		{"adjacent", 1, 4, 5, 7, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(day(tt.aStart), day(tt.aEnd), day(tt.bStart), day(tt.bEnd)))
		})
	}
}

func TestCreateVacationRequest_Validate(t *testing.T) {
	req := CreateVacationRequest{StartDate: "2024-06-10", EndDate: "2024-06-14", Reason: " Trip "}
	require.NoError(t, req.Validate())
	assert.Equal(t, day(10), req.Start)
	assert.Equal(t, "Trip", req.Reason)

	req = CreateVacationRequest{StartDate: "2024-06-14", EndDate: "2024-06-10", Reason: "Trip"}
	err := req.Validate()
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "end_date", verrs[0].Field)
}

func TestCreateVacationRequest_ReasonLengthCountsCharacters(t *testing.T) {
	// 1000 two-byte characters fit; one more does not.
	req := CreateVacationRequest{StartDate: "2024-06-10", EndDate: "2024-06-14", Reason: strings.Repeat("é", 1000)}
	require.NoError(t, req.Validate())

	req.Reason = strings.Repeat("é", 1001)
	var verrs validator.ValidationErrors
	require.True(t, errors.As(req.Validate(), &verrs))
	assert.Equal(t, "reason", verrs[0].Field)
}
