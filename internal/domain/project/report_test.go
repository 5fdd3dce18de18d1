package project

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time { return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC) }

func TestBuildReport(t *testing.T) {
	rows := []ReportRow{
		{ProjectID: "p1", ProjectName: "Portal", ProjectCode: "PRT", UserID: "u1", UserName: "Dina", HoursAllocated: 4, Date: day(10), HoursWorked: 3, CompletionPercentage: 20},
		{ProjectID: "p1", ProjectName: "Portal", ProjectCode: "PRT", UserID: "u1", UserName: "Dina", HoursAllocated: 4, Date: day(11), HoursWorked: 5, CompletionPercentage: 40},
		{ProjectID: "p1", ProjectName: "Portal", ProjectCode: "PRT", UserID: "u2", UserName: "Bayu", HoursAllocated: 8, Date: day(10), HoursWorked: 8, CompletionPercentage: 50},
		{ProjectID: "p2", ProjectName: "Audit", ProjectCode: "AUD", UserID: "u1", UserName: "Dina", HoursAllocated: 4, Date: day(10), HoursWorked: 2, CompletionPercentage: 10},
	}

	r := BuildReport(rows)

	assert.Equal(t, 18.0, r.TotalHoursWorked)
	assert.Equal(t, 20.0, r.TotalHoursBudgeted)

	require.Len(t, r.Projects, 2)
	assert.Equal(t, "Audit", r.Projects[0].ProjectName)
	portal := r.Projects[1]
	assert.Equal(t, 3, portal.DaysReported)
	assert.Equal(t, 16.0, portal.HoursWorked)
	assert.Equal(t, 16.0, portal.HoursBudgeted)
	assert.Equal(t, 100.0, portal.Utilization)
	assert.Equal(t, 36.7, portal.AverageCompletion)
	require.Len(t, portal.Members, 2)
	assert.Equal(t, "Bayu", portal.Members[0].UserName)
	assert.Equal(t, 100.0, portal.Members[1].Utilization)

	require.Len(t, r.Users, 2)
	dina := r.Users[1]
	assert.Equal(t, "Dina", dina.UserName)
	assert.Equal(t, 2, dina.Projects)
	assert.Equal(t, 3, dina.DaysReported)
	assert.Equal(t, 10.0, dina.HoursWorked)
	assert.Equal(t, 83.3, dina.Utilization)
}

func TestBuildReportEmpty(t *testing.T) {
	r := BuildReport(nil)
	assert.Empty(t, r.Projects)
	assert.Empty(t, r.Users)
	assert.NotNil(t, r.Projects)
	assert.Zero(t, r.TotalHoursWorked)
}

func TestReportFilterValidate(t *testing.T) {
	f := ReportFilter{StartDate: "2024-06-01", EndDate: "2024-06-30"}
	require.NoError(t, f.Validate())
	assert.Equal(t, day(1), f.From)

	f = ReportFilter{StartDate: "2024-06-30", EndDate: "2024-06-01"}
	assert.Error(t, f.Validate())

	f = ReportFilter{StartDate: "2023-01-01", EndDate: "2024-06-01"}
	assert.Error(t, f.Validate())
}

func TestSubmitDailyUpdateValidate(t *testing.T) {
	valid := SubmitDailyUpdateRequest{
		AllocationID: "0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", Date: "2024-06-10",
		HoursWorked: 24, Description: "wired exports", CompletionPercentage: 100,
	}
	require.NoError(t, valid.Validate())
	assert.Equal(t, day(10), valid.Day)

	cases := []struct {
		name  string
		apply func(r *SubmitDailyUpdateRequest)
	}{
		{"zero hours", func(r *SubmitDailyUpdateRequest) { r.HoursWorked = 0 }},
		{"too many hours", func(r *SubmitDailyUpdateRequest) { r.HoursWorked = 24.5 }},
		{"completion over 100", func(r *SubmitDailyUpdateRequest) { r.CompletionPercentage = 101 }},
		{"negative completion", func(r *SubmitDailyUpdateRequest) { r.CompletionPercentage = -1 }},
		{"blank description", func(r *SubmitDailyUpdateRequest) { r.Description = "  " }},
		{"bad date", func(r *SubmitDailyUpdateRequest) { r.Date = "10/06/2024" }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := valid
			c.apply(&r)
			assert.Error(t, r.Validate())
		})
	}
}
