// Package invest projects compound-interest growth of an initial amount
// plus monthly deposits under profile-specific rate scenarios.
package invest

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/malu-oliver/agent-financeiro/internal/profiling"
)

// Annual rates, in percent, assumed for each profile's scenario.
var profileRates = map[profiling.Profile]float64{
	profiling.Conservative: 8,
	profiling.Moderate:     12,
	profiling.Aggressive:   18,
}

// DefaultProfileRate applies when the profile is unknown.
const DefaultProfileRate = 10.0

// Selic multipliers used by Simulate when no rate is given.
var selicMultipliers = map[profiling.Profile]float64{
	profiling.Conservative: 0.85,
	profiling.Moderate:     1.1,
	profiling.Aggressive:   1.3,
}

const (
	optimisticFactor  = 1.25
	pessimisticFactor = 0.75
)

// Result is the outcome of compounding over a whole horizon.
type Result struct {
	FinalValue    float64 `json:"final_value"`
	TotalInvested float64 `json:"total_invested"`
	Interest      float64 `json:"interest"`
	AnnualRate    float64 `json:"annual_rate"`
	Months        int     `json:"months"`
}

// YearPoint is the balance at the end of one year.
type YearPoint struct {
	Year        int     `json:"year"`
	Accumulated float64 `json:"accumulated"`
	Invested    float64 `json:"invested"`
	Gains       float64 `json:"gains"`
}

// CompoundInterest compounds initial plus a deposit at the start of every
// month at annualRate/12 percent per month.
func CompoundInterest(initial, monthly float64, years int, annualRate float64) Result {
	months := max(years, 0) * 12
	value := accumulate(initial, monthly, months, annualRate/12/100)
	invested := initial + monthly*float64(months)
	return Result{
		FinalValue:    round2(value),
		TotalInvested: round2(invested),
		Interest:      round2(value - invested),
		AnnualRate:    annualRate,
		Months:        months,
	}
}

// YearlyProjection returns the balance at the end of each year using the
// same nominal monthly rate as CompoundInterest.
func YearlyProjection(initial, monthly float64, years int, annualRate float64) []YearPoint {
	return project(initial, monthly, years, annualRate/12/100)
}

func accumulate(initial, monthly float64, months int, rate float64) float64 {
	value := initial
	for range months {
		value = (value + monthly) * (1 + rate)
	}
	return value
}

func project(initial, monthly float64, years int, rate float64) []YearPoint {
	points := make([]YearPoint, 0, max(years, 0))
	value := initial
	for year := 1; year <= years; year++ {
		for range 12 {
			value = (value + monthly) * (1 + rate)
		}
		invested := initial + monthly*float64(year*12)
		points = append(points, YearPoint{
			Year:        year,
			Accumulated: round2(value),
			Invested:    round2(invested),
			Gains:       round2(value - invested),
		})
	}
	return points
}

// ProfileRate returns the scenario rate for p, in percent per year.
func ProfileRate(p profiling.Profile) float64 {
	if r, ok := profileRates[p]; ok {
		return r
	}
	return DefaultProfileRate
}

// RateSource yields the current Selic rate in percent per year.
type RateSource interface {
	Current(ctx context.Context) float64
}

// Calculator runs scenario and simulation requests against a Selic source.
type Calculator struct {
	selic RateSource
	now   func() time.Time
}

func NewCalculator(selic RateSource) *Calculator {
	return &Calculator{selic: selic, now: time.Now}
}

// Scenarios compares the profile's own rate with optimistic, pessimistic
// and Selic-indexed alternatives.
type Scenarios struct {
	Profile      Result      `json:"profile"`
	Optimistic   Result      `json:"optimistic"`
	Pessimistic  Result      `json:"pessimistic"`
	Selic        Result      `json:"selic"`
	CurrentSelic float64     `json:"current_selic"`
	Projection   []YearPoint `json:"projection"`
}

func (c *Calculator) Scenarios(ctx context.Context, initial, monthly float64, years int, p profiling.Profile) Scenarios {
	rate := ProfileRate(p)
	selic := c.selic.Current(ctx)
	return Scenarios{
		Profile:      CompoundInterest(initial, monthly, years, rate),
		Optimistic:   CompoundInterest(initial, monthly, years, rate*optimisticFactor),
		Pessimistic:  CompoundInterest(initial, monthly, years, rate*pessimisticFactor),
		Selic:        CompoundInterest(initial, monthly, years, selic),
		CurrentSelic: selic,
		Projection:   YearlyProjection(initial, monthly, years, rate),
	}
}

// SimulationRequest describes one simulation. A zero AnnualRate means
// "derive it from the Selic rate and the profile".
type SimulationRequest struct {
	InitialAmount  float64           `json:"initial_amount"`
	MonthlyDeposit float64           `json:"monthly_deposit"`
	Years          int               `json:"years"`
	AnnualRate     float64           `json:"annual_rate,omitempty"`
	Profile        profiling.Profile `json:"profile"`
}

// Validate rejects requests that cannot be simulated.
func (r SimulationRequest) Validate() error {
	switch {
	case r.InitialAmount < 0:
		return fmt.Errorf("initial_amount must not be negative")
	case r.MonthlyDeposit < 0:
		return fmt.Errorf("monthly_deposit must not be negative")
	case r.Years < 1 || r.Years > 50:
		return fmt.Errorf("years must be between 1 and 50, got %d", r.Years)
	case r.AnnualRate < 0 || r.AnnualRate > 100:
		return fmt.Errorf("annual_rate must be between 0 and 100, got %v", r.AnnualRate)
	}
	if _, ok := profiling.ParseProfile(string(r.Profile)); !ok {
		return fmt.Errorf("unknown profile %q", r.Profile)
	}
	return nil
}

// Simulation is the outcome of Simulate.
type Simulation struct {
	Result
	PercentReturn float64           `json:"percent_return"`
	Projection    []YearPoint       `json:"projection"`
	Request       SimulationRequest `json:"request"`
	RateFromSelic bool              `json:"rate_from_selic"`
	Timestamp     time.Time         `json:"timestamp"`
}

// Simulate treats the annual rate as effective and compounds deposits at
// the end of each month.
func (c *Calculator) Simulate(ctx context.Context, req SimulationRequest) (*Simulation, error) {
	if p, ok := profiling.ParseProfile(string(req.Profile)); ok {
		req.Profile = p
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	fromSelic := false
	if req.AnnualRate == 0 {
		mult, ok := selicMultipliers[req.Profile]
		if !ok {
			mult = 1
		}
		req.AnnualRate = round2(c.selic.Current(ctx) * mult)
		fromSelic = true
	}

	rate := math.Pow(1+req.AnnualRate/100, 1.0/12) - 1
	months := req.Years * 12
	value := annuity(req.InitialAmount, req.MonthlyDeposit, months, rate)
	invested := req.InitialAmount + req.MonthlyDeposit*float64(months)

	sim := &Simulation{
		Result: Result{
			FinalValue:    round2(value),
			TotalInvested: round2(invested),
			Interest:      round2(value - invested),
			AnnualRate:    req.AnnualRate,
			Months:        months,
		},
		Request:       req,
		RateFromSelic: fromSelic,
		Timestamp:     c.now(),
	}
	if invested > 0 {
		sim.PercentReturn = round2((value - invested) / invested * 100)
	}
	for year := 1; year <= req.Years; year++ {
		m := year * 12
		v := annuity(req.InitialAmount, req.MonthlyDeposit, m, rate)
		inv := req.InitialAmount + req.MonthlyDeposit*float64(m)
		sim.Projection = append(sim.Projection, YearPoint{
			Year:        year,
			Accumulated: round2(v),
			Invested:    round2(inv),
			Gains:       round2(v - inv),
		})
	}
	return sim, nil
}

// annuity is the future value of initial plus end-of-month deposits.
func annuity(initial, monthly float64, months int, rate float64) float64 {
	if rate == 0 {
		return initial + monthly*float64(months)
	}
	growth := math.Pow(1+rate, float64(months))
	return initial*growth + monthly*(growth-1)/rate
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
