package project

import (
	"math"
	"sort"
)

type MemberSummary struct {
	UserID            string  `json:"user_id"`
	UserName          string  `json:"user_name"`
	DaysReported      int     `json:"days_reported"`
	HoursWorked       float64 `json:"hours_worked"`
	HoursBudgeted     float64 `json:"hours_budgeted"`
	Utilization       float64 `json:"utilization"` // percent of budget
	AverageCompletion float64 `json:"average_completion"`
}

type ProjectSummary struct {
	ProjectID         string          `json:"project_id"`
	ProjectName       string          `json:"project_name"`
	ProjectCode       string          `json:"project_code"`
	DaysReported      int             `json:"days_reported"`
	HoursWorked       float64         `json:"hours_worked"`
	HoursBudgeted     float64         `json:"hours_budgeted"`
	Utilization       float64         `json:"utilization"`
	AverageCompletion float64         `json:"average_completion"`
	Members           []MemberSummary `json:"members"`
}

type UserSummary struct {
	UserID            string  `json:"user_id"`
	UserName          string  `json:"user_name"`
	Projects          int     `json:"projects"`
	DaysReported      int     `json:"days_reported"`
	HoursWorked       float64 `json:"hours_worked"`
	HoursBudgeted     float64 `json:"hours_budgeted"`
	Utilization       float64 `json:"utilization"`
	AverageCompletion float64 `json:"average_completion"`
}

type Report struct {
	Projects           []ProjectSummary `json:"projects"`
	Users              []UserSummary    `json:"users"`
	TotalHoursWorked   float64          `json:"total_hours_worked"`
	TotalHoursBudgeted float64          `json:"total_hours_budgeted"`
}

type tally struct {
	days       int
	worked     float64
	budgeted   float64
	completion int
}

func (t *tally) add(r ReportRow) {
	t.days++
	t.worked += r.HoursWorked
	t.budgeted += r.HoursAllocated
	t.completion += r.CompletionPercentage
}

func (t tally) utilization() float64 {
	if t.budgeted == 0 {
		return 0
	}
	return round1(t.worked / t.budgeted * 100)
}

func (t tally) averageCompletion() float64 {
	if t.days == 0 {
		return 0
	}
	return round1(float64(t.completion) / float64(t.days))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// BuildReport aggregates daily updates per project, per project member and
// per user. Every update counts one day of the allocation's daily budget.
func BuildReport(rows []ReportRow) Report {
	type projectAcc struct {
		summary ProjectSummary
		total   tally
		members map[string]*tally
		names   map[string]string
	}
	type userAcc struct {
		name     string
		total    tally
		projects map[string]struct{}
	}

	projects := map[string]*projectAcc{}
	users := map[string]*userAcc{}
	var report Report

	for _, r := range rows {
		p, ok := projects[r.ProjectID]
		if !ok {
			p = &projectAcc{
				summary: ProjectSummary{ProjectID: r.ProjectID, ProjectName: r.ProjectName, ProjectCode: r.ProjectCode},
				members: map[string]*tally{},
				names:   map[string]string{},
			}
			projects[r.ProjectID] = p
		}
		p.total.add(r)
		m, ok := p.members[r.UserID]
		if !ok {
			m = &tally{}
			p.members[r.UserID] = m
			p.names[r.UserID] = r.UserName
		}
		m.add(r)

		u, ok := users[r.UserID]
		if !ok {
			u = &userAcc{name: r.UserName, projects: map[string]struct{}{}}
			users[r.UserID] = u
		}
		u.total.add(r)
		u.projects[r.ProjectID] = struct{}{}

		report.TotalHoursWorked += r.HoursWorked
		report.TotalHoursBudgeted += r.HoursAllocated
	}

	report.Projects = make([]ProjectSummary, 0, len(projects))
	for _, p := range projects {
		s := p.summary
		s.DaysReported = p.total.days
		s.HoursWorked = round1(p.total.worked)
		s.HoursBudgeted = round1(p.total.budgeted)
		s.Utilization = p.total.utilization()
		s.AverageCompletion = p.total.averageCompletion()
		s.Members = make([]MemberSummary, 0, len(p.members))
		for userID, m := range p.members {
			s.Members = append(s.Members, MemberSummary{
				UserID:            userID,
				UserName:          p.names[userID],
				DaysReported:      m.days,
				HoursWorked:       round1(m.worked),
				HoursBudgeted:     round1(m.budgeted),
				Utilization:       m.utilization(),
				AverageCompletion: m.averageCompletion(),
			})
		}
		sort.Slice(s.Members, func(i, j int) bool { return s.Members[i].UserName < s.Members[j].UserName })
		report.Projects = append(report.Projects, s)
	}
	sort.Slice(report.Projects, func(i, j int) bool { return report.Projects[i].ProjectName < report.Projects[j].ProjectName })

	report.Users = make([]UserSummary, 0, len(users))
	for userID, u := range users {
		report.Users = append(report.Users, UserSummary{
			UserID:            userID,
			UserName:          u.name,
			Projects:          len(u.projects),
			DaysReported:      u.total.days,
			HoursWorked:       round1(u.total.worked),
			HoursBudgeted:     round1(u.total.budgeted),
			Utilization:       u.total.utilization(),
			AverageCompletion: u.total.averageCompletion(),
		})
	}
	sort.Slice(report.Users, func(i, j int) bool { return report.Users[i].UserName < report.Users[j].UserName })

	report.TotalHoursWorked = round1(report.TotalHoursWorked)
	report.TotalHoursBudgeted = round1(report.TotalHoursBudgeted)
	return report
}
