// Package analytics compares a user with similar investors and summarizes
// the whole user base.
package analytics

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/malu-oliver/agent-financeiro/internal/store"
)

// Comparison labels.
const (
	Above   = "acima"
	Below   = "abaixo"
	Average = "na media"
	NoData  = "sem dados"
)

const (
	maxObjectives     = 5
	objectiveRunes    = 100
	defaultAgeDiff    = 5
	defaultIncomeDiff = 0.3
)

// UserLister is the slice of store.UserRepo analytics needs.
type UserLister interface {
	All(ctx context.Context) ([]store.User, error)
}

// Analyzer runs peer comparisons and benchmarks over stored users.
type Analyzer struct {
	users UserLister
	// MaxAgeDiff is the widest age gap, in years, that still counts as a peer.
	MaxAgeDiff int
	// MaxIncomeDiff is the widest relative income gap that still counts.
	MaxIncomeDiff float64
}

func New(users UserLister) *Analyzer {
	return &Analyzer{users: users, MaxAgeDiff: defaultAgeDiff, MaxIncomeDiff: defaultIncomeDiff}
}

type AgeComparison struct {
	Group      string  `json:"age_group"`
	Mean       float64 `json:"mean_age,omitempty"`
	Median     float64 `json:"median_age,omitempty"`
	Comparison string  `json:"comparison"`
}

type IncomeComparison struct {
	Mean       float64 `json:"mean_income,omitempty"`
	Comparison string  `json:"comparison"`
	Quartile   int     `json:"quartile,omitempty"`
}

// PeerComparison places a user among investors of similar age and income.
type PeerComparison struct {
	TotalPeers       int               `json:"total_peers"`
	Message          string            `json:"message,omitempty"`
	Age              *AgeComparison    `json:"age_group_comparison,omitempty"`
	Income           *IncomeComparison `json:"income_comparison,omitempty"`
	Profiles         map[string]int    `json:"profile_distribution,omitempty"`
	CommonObjectives []string          `json:"common_objectives,omitempty"`
}

// ComparePeers compares u with every other stored user whose age is within
// MaxAgeDiff years and whose income differs by at most MaxIncomeDiff of u's.
func (a *Analyzer) ComparePeers(ctx context.Context, u store.User) (*PeerComparison, error) {
	all, err := a.users.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	var peers []store.User
	for _, p := range all {
		if p.ID == u.ID {
			continue
		}
		ageDiff := abs(p.Age - u.Age)
		incomeDiff := math.Abs(p.Income-u.Income) / math.Max(u.Income, 1)
		if ageDiff <= a.MaxAgeDiff && incomeDiff <= a.MaxIncomeDiff {
			peers = append(peers, p)
		}
	}

	if len(peers) == 0 {
		return &PeerComparison{Message: "Dados insuficientes para comparação no momento"}, nil
	}
	return &PeerComparison{
		TotalPeers:       len(peers),
		Age:              compareAge(peers, u.Age),
		Income:           compareIncome(peers, u.Income),
		Profiles:         profileCounts(peers),
		CommonObjectives: commonObjectives(peers),
	}, nil
}

func compareAge(peers []store.User, age int) *AgeComparison {
	var ages []float64
	for _, p := range peers {
		if p.Age > 0 {
			ages = append(ages, float64(p.Age))
		}
	}
	c := &AgeComparison{Group: AgeGroup(age)}
	if len(ages) == 0 {
		c.Comparison = NoData
		return c
	}
	c.Mean = round(mean(ages), 1)
	c.Median = median(ages)
	c.Comparison = compare(float64(age), mean(ages))
	return c
}

func compareIncome(peers []store.User, income float64) *IncomeComparison {
	var incomes []float64
	for _, p := range peers {
		if p.Income > 0 {
			incomes = append(incomes, p.Income)
		}
	}
	if len(incomes) == 0 {
		return &IncomeComparison{Comparison: NoData}
	}
	avg := mean(incomes)
	return &IncomeComparison{
		Mean:       round(avg, 2),
		Comparison: compare(income, avg),
		Quartile:   IncomeQuartile(income, incomes),
	}
}

func profileCounts(users []store.User) map[string]int {
	counts := make(map[string]int)
	for _, u := range users {
		if u.Profile != "" {
			counts[u.Profile]++
		}
	}
	return counts
}

// commonObjectives returns up to five distinct goals, in user order.
func commonObjectives(users []store.User) []string {
	var out []string
	seen := make(map[string]bool)
	for _, u := range users {
		g := strings.TrimSpace(u.Goal)
		if g == "" {
			continue
		}
		if utf8.RuneCountInString(g) > objectiveRunes {
			g = string([]rune(g)[:objectiveRunes])
		}
		if seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, g)
		if len(out) == maxObjectives {
			break
		}
	}
	return out
}

// Benchmark summarizes every stored user.
type Benchmark struct {
	TotalUsers   int                `json:"total_users"`
	MeanAge      float64            `json:"mean_age"`
	MeanIncome   float64            `json:"mean_income"`
	Distribution map[string]float64 `json:"profile_distribution"`
	MostCommon   string             `json:"most_common_profile"`
	Message      string             `json:"message,omitempty"`
}

// Benchmark reports mean age and income and the share of users holding
// each profile. Ties for the most common profile go to the more
// conservative one.
func (a *Analyzer) Benchmark(ctx context.Context) (*Benchmark, error) {
	all, err := a.users.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	b := &Benchmark{TotalUsers: len(all), Distribution: map[string]float64{}, MostCommon: "N/A"}
	if len(all) == 0 {
		b.Message = "Dados insuficientes para comparação"
		return b, nil
	}

	var ages, incomes []float64
	for _, u := range all {
		if u.Age > 0 {
			ages = append(ages, float64(u.Age))
		}
		if u.Income > 0 {
			incomes = append(incomes, u.Income)
		}
	}
	b.MeanAge = round(mean(ages), 1)
	b.MeanIncome = round(mean(incomes), 2)

	counts := profileCounts(all)
	best := 0
	for _, p := range profileOrder(counts) {
		n := counts[p]
		b.Distribution[p] = round(float64(n)/float64(len(all))*100, 2)
		if n > best {
			best = n
			b.MostCommon = p
		}
	}
	return b, nil
}

var knownOrder = map[string]int{"conservador": 0, "moderado": 1, "agressivo": 2}

// profileOrder sorts known profiles first, in risk order, then the rest
// alphabetically.
func profileOrder(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(x, y string) int {
		ox, okx := knownOrder[x]
		oy, oky := knownOrder[y]
		switch {
		case okx && oky:
			return ox - oy
		case okx:
			return -1
		case oky:
			return 1
		}
		return strings.Compare(x, y)
	})
	return keys
}

// AgeGroup buckets an age into the ranges used in reports.
func AgeGroup(age int) string {
	switch {
	case age <= 25:
		return "18-25"
	case age <= 35:
		return "26-35"
	case age <= 45:
		return "36-45"
	case age <= 55:
		return "46-55"
	}
	return "56+"
}

// IncomeQuartile returns the 1-based quartile of income within incomes.
func IncomeQuartile(income float64, incomes []float64) int {
	if len(incomes) == 0 {
		return 1
	}
	sorted := slices.Clone(incomes)
	slices.Sort(sorted)
	n := len(sorted)
	for i, v := range sorted {
		if income <= v {
			return min(4, i*4/n+1)
		}
	}
	return 4
}

func compare(v, avg float64) string {
	switch {
	case v > avg:
		return Above
	case v < avg:
		return Below
	}
	return Average
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func median(xs []float64) float64 {
	s := slices.Clone(xs)
	slices.Sort(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
