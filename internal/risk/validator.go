// Package risk checks a planned or logged trade against the risk rules of the account
// it is attributed to.
package risk

import (
	"fmt"
	"tradesync/internal/journal"
)

// Status is the severity of a risk check. Higher values are more severe.
type Status int

const (
	Safe Status = iota
	Warning
	Danger
)

func (s Status) String() string {
	switch s {
	case Warning:
		return "warning"
	case Danger:
		return "danger"
	default:
		return "safe"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "safe", "":
		*s = Safe
	case "warning":
		*s = Warning
	case "danger":
		*s = Danger
	default:
		return fmt.Errorf("unknown risk status %q", string(b))
	}
	return nil
}

func (s Status) raise(to Status) Status {
	if to > s {
		return to
	}
	return s
}

// Result is the outcome of a validation. Errors block submission, warnings never do.
type Result struct {
	Errors      map[string]string `json:"errors"`
	Warnings    []string          `json:"warnings"`
	Status      Status            `json:"risk_status"`
	RiskPercent float64           `json:"risk_percent"`
}

// Blocked reports whether the trade must not be submitted.
func (r Result) Blocked() bool {
	return len(r.Errors) > 0
}

// Thresholds are the tunable limits of the validator.
type Thresholds struct {
	MaxRiskPct          float64 // risk above this share of capital is an error
	WarnRiskPct         float64 // risk above this share of capital is a warning
	DailyBudgetFraction float64 // share of the daily drawdown budget that triggers a warning
	MinRMultiple        float64 // results below this R are flagged
}

// DefaultThresholds are the prop-firm limits the journal ships with.
var DefaultThresholds = Thresholds{
	MaxRiskPct:          2,
	WarnRiskPct:         1.5,
	DailyBudgetFraction: 0.8,
	MinRMultiple:        -3,
}

// Validator applies a fixed set of thresholds.
type Validator struct {
	th Thresholds
}

// NewValidator returns a Validator. Zero fields of th fall back to DefaultThresholds.
func NewValidator(th Thresholds) *Validator {
	if th.MaxRiskPct <= 0 {
		th.MaxRiskPct = DefaultThresholds.MaxRiskPct
	}
	if th.WarnRiskPct <= 0 {
		th.WarnRiskPct = DefaultThresholds.WarnRiskPct
	}
	if th.DailyBudgetFraction <= 0 {
		th.DailyBudgetFraction = DefaultThresholds.DailyBudgetFraction
	}
	if th.MinRMultiple == 0 {
		th.MinRMultiple = DefaultThresholds.MinRMultiple
	}
	return &Validator{th: th}
}

// Thresholds returns the limits in effect.
func (v *Validator) Thresholds() Thresholds {
	return v.th
}

var defaultValidator = NewValidator(DefaultThresholds)

// Validate checks t against acct using DefaultThresholds.
func Validate(t journal.Trade, acct *journal.Account) Result {
	return defaultValidator.Validate(t, acct)
}

// Validate evaluates every rule and never stops at the first finding. The trade's
// PnL and RMultiple are recomputed, so callers may pass an underived trade. A nil
// account skips the capital based rules.
func (v *Validator) Validate(t journal.Trade, acct *journal.Account) Result {
	t = journal.Derive(t)
	res := Result{
		Errors:   map[string]string{},
		Warnings: []string{},
	}

	var capital float64
	if acct != nil {
		capital = acct.InitialBalance
	}
	res.RiskPercent = journal.RiskPercent(t.RiskAmount, capital)

	if res.RiskPercent > v.th.MaxRiskPct {
		res.Errors["risk"] = fmt.Sprintf("Risk exceeds %g%% of account balance", v.th.MaxRiskPct)
		res.Status = res.Status.raise(Danger)
	} else if res.RiskPercent > v.th.WarnRiskPct {
		res.Warnings = append(res.Warnings, fmt.Sprintf("Risk approaching %g%% limit", v.th.MaxRiskPct))
		res.Status = res.Status.raise(Warning)
	}

	if acct != nil && capital > 0 && acct.Rules.MaxDailyDrawdownPct > 0 {
		budget := capital * acct.Rules.MaxDailyDrawdownPct / 100
		if projectedDailyRisk(t, acct) > budget*v.th.DailyBudgetFraction {
			res.Warnings = append(res.Warnings, "Approaching daily loss limit")
			res.Status = res.Status.raise(Warning)
		}
	}

	if t.RMultiple < v.th.MinRMultiple {
		res.Warnings = append(res.Warnings, fmt.Sprintf("R-Multiple below %gR, consider stricter stop loss", v.th.MinRMultiple))
	}

	if t.EntryTime != nil && t.ExitTime != nil && !t.ExitTime.After(*t.EntryTime) {
		res.Errors["timing"] = "Exit time must be after entry time"
	}

	return res
}

// projectedDailyRisk is the loss already booked today plus what this trade puts at risk.
func projectedDailyRisk(t journal.Trade, acct *journal.Account) float64 {
	var lost float64
	if acct.DailyPnL < 0 {
		lost = -acct.DailyPnL
	}
	return lost + t.RiskAmount
}
