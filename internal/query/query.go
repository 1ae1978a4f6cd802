// Package query derives statistics, reminders and analytics from the device
// ledger. Everything here is a pure function over ledger state: no mutation,
// no I/O.
package query

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"repairbox/internal/model"
)

// workloadFullDayHours is the day capacity against which the workload
// percentage is computed: 12 booked hours = 100%.
const workloadFullDayHours = 12.0

// DayStats are the headline numbers for one day.
type DayStats struct {
	Total           int     `json:"total"`
	Repaired        int     `json:"repaired"`
	Pending         int     `json:"pending"`
	Urgent          int     `json:"urgent"`
	Revenue         float64 `json:"revenue"`
	WorkloadPercent float64 `json:"workloadPercent"`
}

// Stats computes the daily statistics. Repaired counts resolved tickets
// (repaired or delivered); Pending is the remainder, so Total is always
// Repaired+Pending. Revenue sums prices of resolved, priced tickets.
// Workload treats a missing duration as one hour.
func Stats(day []*model.Device) DayStats {
	var s DayStats
	var workload float64
	for _, d := range day {
		s.Total++
		if d.Status.Resolved() {
			s.Repaired++
			if d.Price != "" {
				s.Revenue += num(d.Price)
			}
		} else {
			s.Pending++
		}
		if d.Urgency == model.UrgencyUrgent || d.Urgency == model.UrgencyExpress ||
			d.Priority == model.PriorityHigh || d.Priority == model.PriorityCritical {
			s.Urgent++
		}
		if d.Duration != "" {
			workload += num(d.Duration)
		} else {
			workload++
		}
	}
	s.WorkloadPercent = workload / workloadFullDayHours * 100
	if s.WorkloadPercent > 100 {
		s.WorkloadPercent = 100
	}
	return s
}

// Reminders builds the day's alert list in fixed priority order:
// express-and-unresolved, critical-and-unresolved, waiting-for-parts,
// ready-for-delivery.
func Reminders(day []*model.Device) []string {
	var express, critical, waiting, ready int
	for _, d := range day {
		if d.Urgency == model.UrgencyExpress && !d.Status.Resolved() {
			express++
		}
		if d.Priority == model.PriorityCritical && !d.Status.Resolved() {
			critical++
		}
		if d.Status == model.StatusWaiting {
			waiting++
		}
		if d.Status == model.StatusRepaired {
			ready++
		}
	}
	var out []string
	if express > 0 {
		out = append(out, fmt.Sprintf("%d express device(s) to handle first", express))
	}
	if critical > 0 {
		out = append(out, fmt.Sprintf("%d critical device(s)", critical))
	}
	if waiting > 0 {
		out = append(out, fmt.Sprintf("%d device(s) waiting for parts", waiting))
	}
	if ready > 0 {
		out = append(out, fmt.Sprintf("%d device(s) ready for delivery", ready))
	}
	return out
}

// PhotoReminder returns the index of the first record of the day that still
// needs a photo, or -1.
func PhotoReminder(day []*model.Device) int {
	for i, d := range day {
		if d.NeedsPhoto() {
			return i
		}
	}
	return -1
}

// ProblemStat aggregates records sharing a lower-cased problem text.
type ProblemStat struct {
	Count        int     `json:"count"`
	TotalTime    float64 `json:"totalTime"`
	TotalRevenue float64 `json:"totalRevenue"`
	AvgTime      float64 `json:"avgTime"`
	AvgRevenue   float64 `json:"avgRevenue"`
}

// ModelStat aggregates records sharing a lower-cased model text.
type ModelStat struct {
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

// AnalyticsReport groups all records across all days.
type AnalyticsReport struct {
	Problems     map[string]*ProblemStat `json:"problems"`
	Models       map[string]*ModelStat   `json:"models"`
	TotalDevices int                     `json:"totalDevices"`
}

// RankedProblem is one entry of the top-problems ranking.
type RankedProblem struct {
	Problem string       `json:"problem"`
	Stat    *ProblemStat `json:"stat"`
}

// Analytics groups every record by problem and by model. Unlike revenue in
// Stats, analytics sums any present price regardless of status: it measures
// demand, not realized income.
func Analytics(days map[string][]*model.Device) AnalyticsReport {
	rep := AnalyticsReport{
		Problems: make(map[string]*ProblemStat),
		Models:   make(map[string]*ModelStat),
	}
	for _, day := range days {
		for _, d := range day {
			rep.TotalDevices++

			pk := strings.ToLower(d.Problem)
			ps := rep.Problems[pk]
			if ps == nil {
				ps = &ProblemStat{}
				rep.Problems[pk] = ps
			}
			ps.Count++
			if d.Duration != "" {
				ps.TotalTime += num(d.Duration)
			}
			if d.Price != "" {
				ps.TotalRevenue += num(d.Price)
			}

			mk := strings.ToLower(d.Model)
			ms := rep.Models[mk]
			if ms == nil {
				ms = &ModelStat{}
				rep.Models[mk] = ms
			}
			ms.Count++
			if d.Price != "" {
				ms.Revenue += num(d.Price)
			}
		}
	}
	for _, ps := range rep.Problems {
		if ps.Count > 0 {
			ps.AvgTime = ps.TotalTime / float64(ps.Count)
			ps.AvgRevenue = ps.TotalRevenue / float64(ps.Count)
		}
	}
	return rep
}

// TopProblems ranks problem groups by frequency descending (problem text
// ascending on ties, for a stable order) and returns at most n entries.
func (r AnalyticsReport) TopProblems(n int) []RankedProblem {
	ranked := make([]RankedProblem, 0, len(r.Problems))
	for p, s := range r.Problems {
		ranked = append(ranked, RankedProblem{Problem: p, Stat: s})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Stat.Count != ranked[j].Stat.Count {
			return ranked[i].Stat.Count > ranked[j].Stat.Count
		}
		return ranked[i].Problem < ranked[j].Problem
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// ClientSummary is one client's cross-day history.
type ClientSummary struct {
	Name       string  `json:"name"`
	Phone      string  `json:"phone,omitempty"`
	Visits     int     `json:"visits"`
	TotalSpent float64 `json:"totalSpent"`
	LastVisit  string  `json:"lastVisit"`
}

// ClientHistory groups records across all days by lower-cased client name.
// Spend counts resolved, priced tickets only. Last visit is the maximum
// date key, which is correct because keys are zero-padded ISO dates.
// Days are walked in chronological key order so the reported spelling and
// phone come from the client's earliest record, not from map order.
// The result is ordered by total spend descending.
func ClientHistory(days map[string][]*model.Device) []ClientSummary {
	dateKeys := make([]string, 0, len(days))
	for k := range days {
		dateKeys = append(dateKeys, k)
	}
	sort.Strings(dateKeys)

	byClient := make(map[string]*ClientSummary)
	for _, dateKey := range dateKeys {
		for _, d := range days[dateKey] {
			key := strings.ToLower(d.Client)
			cs := byClient[key]
			if cs == nil {
				cs = &ClientSummary{Name: d.Client, Phone: d.Phone, LastVisit: dateKey}
				byClient[key] = cs
			}
			cs.Visits++
			if d.Price != "" && d.Status.Resolved() {
				cs.TotalSpent += num(d.Price)
			}
			if dateKey > cs.LastVisit {
				cs.LastVisit = dateKey
			}
		}
	}
	out := make([]ClientSummary, 0, len(byClient))
	for _, cs := range byClient {
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalSpent != out[j].TotalSpent {
			return out[i].TotalSpent > out[j].TotalSpent
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// WeekStats aggregates the trailing seven days ending at ref.
type WeekStats struct {
	Total     int     `json:"total"`
	Repaired  int     `json:"repaired"`
	Revenue   float64 `json:"revenue"`
	AvgPerDay float64 `json:"avgPerDay"`
}

func Week(days map[string][]*model.Device, ref time.Time) WeekStats {
	var w WeekStats
	for i := 0; i < 7; i++ {
		day := days[ref.AddDate(0, 0, -i).Format("2006-01-02")]
		s := Stats(day)
		w.Total += s.Total
		w.Repaired += s.Repaired
		w.Revenue += s.Revenue
	}
	w.AvgPerDay = float64(w.Total) / 7
	return w
}

// num parses a decimal-as-text field; malformed or absent values count as 0.
func num(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
