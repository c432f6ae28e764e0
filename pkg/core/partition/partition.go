// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package partition splits a unit of work (rows, cells or bands of a matrix) into disjoint
// assignments, one per worker.
//
// Two policies are supported:
//
//   - Contiguous: worker k owns the half-open range [k*W/t, (k+1)*W/t). The last worker always
//     ends exactly at W, so the plan covers the domain even when W is not divisible by t.
//   - Strided: worker k owns units k, k+t, k+2t, ... (cyclic ownership).
//
// Either way, the union of all assignments covers [0, W) exactly once, and the number of workers is
// clamped to W so no worker is ever idle.
package partition

import (
	"fmt"
	"iter"
	"strings"

	"github.com/pkg/errors"
)

// Policy selects how units of work are distributed among workers.
type Policy int

const (
	// Contiguous gives each worker one contiguous range of units: best spatial locality per worker.
	Contiguous Policy = iota

	// Strided gives worker k the units k, k+t, k+2t, ...: better load balance when the cost per
	// unit varies, at the expense of locality.
	Strided
)

// String implements fmt.Stringer.
func (p Policy) String() string {
	switch p {
	case Contiguous:
		return "contiguous"
	case Strided:
		return "strided"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy converts the output of Policy.String back to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "contiguous", "range":
		return Contiguous, nil
	case "strided", "cyclic":
		return Strided, nil
	}
	return 0, errors.Errorf("unknown partition policy %q, valid values are \"contiguous\" or \"strided\"", s)
}

var (
	// ErrInvalidThreads is returned when fewer than one thread is requested.
	ErrInvalidThreads = errors.New("partition: number of threads must be >= 1")

	// ErrInvalidUnits is returned for a negative number of units of work.
	ErrInvalidUnits = errors.New("partition: number of units must be >= 0")
)

// Assignment is one worker's share of the units of work: Start, Start+Stride, ... while < End.
type Assignment struct {
	// Worker is the index of the worker in the Plan, in [0, Plan.Workers).
	Worker int

	Start, End, Stride int
}

// Len returns the number of units in the assignment.
func (a Assignment) Len() int {
	if a.End <= a.Start {
		return 0
	}
	return (a.End - a.Start + a.Stride - 1) / a.Stride
}

// Contains returns whether unit u belongs to the assignment.
func (a Assignment) Contains(u int) bool {
	return u >= a.Start && u < a.End && (u-a.Start)%a.Stride == 0
}

// Units iterates over the units of the assignment in increasing order.
func (a Assignment) Units() iter.Seq[int] {
	return func(yield func(int) bool) {
		for u := a.Start; u < a.End; u += a.Stride {
			if !yield(u) {
				return
			}
		}
	}
}

// String implements fmt.Stringer.
func (a Assignment) String() string {
	if a.Stride == 1 {
		return fmt.Sprintf("worker#%d[%d:%d]", a.Worker, a.Start, a.End)
	}
	return fmt.Sprintf("worker#%d[%d:%d:%d]", a.Worker, a.Start, a.End, a.Stride)
}

// Plan is the set of assignments computed for one parallel call. It is not meant to be reused
// across calls.
type Plan struct {
	Policy Policy

	// Units is the size W of the domain [0, W).
	Units int

	// Workers is the effective number of workers, min(threads, Units).
	Workers int

	Assignments []Assignment
}

// Clamp returns the effective number of workers for the given number of units: min(threads, units).
// It returns 0 only if there are no units.
func Clamp(units, threads int) int {
	return max(min(threads, units), 0)
}

// NewPlan splits units of work among threads workers using the given policy.
//
// If threads > units the number of workers is clamped to units. If units == 0 the plan has no
// assignments.
func NewPlan(policy Policy, units, threads int) (Plan, error) {
	if threads < 1 {
		return Plan{}, errors.Wrapf(ErrInvalidThreads, "threads=%d", threads)
	}
	if units < 0 {
		return Plan{}, errors.Wrapf(ErrInvalidUnits, "units=%d", units)
	}
	workers := Clamp(units, threads)
	p := Plan{Policy: policy, Units: units, Workers: workers, Assignments: make([]Assignment, workers)}
	switch policy {
	case Contiguous:
		for k := range workers {
			p.Assignments[k] = Assignment{Worker: k, Start: k * units / workers, End: (k + 1) * units / workers, Stride: 1}
		}
		if workers > 0 {
			p.Assignments[workers-1].End = units
		}
	case Strided:
		for k := range workers {
			p.Assignments[k] = Assignment{Worker: k, Start: k, End: units, Stride: workers}
		}
	default:
		return Plan{}, errors.Errorf("partition: unknown policy %s", policy)
	}
	return p, nil
}

// MustNewPlan is like NewPlan but panics on error.
func MustNewPlan(policy Policy, units, threads int) Plan {
	p, err := NewPlan(policy, units, threads)
	if err != nil {
		panic(err)
	}
	return p
}

// Owner returns the index of the assignment that owns unit u, or -1 if u is out of the domain.
func (p Plan) Owner(u int) int {
	if u < 0 || u >= p.Units {
		return -1
	}
	for k, a := range p.Assignments {
		if a.Contains(u) {
			return k
		}
	}
	return -1
}

// Validate checks that the assignments cover [0, Units) exactly once and that every worker has
// at least one unit.
func (p Plan) Validate() error {
	if len(p.Assignments) != p.Workers {
		return errors.Errorf("partition: plan has %d assignments for %d workers", len(p.Assignments), p.Workers)
	}
	seen := make([]bool, p.Units)
	for k, a := range p.Assignments {
		if a.Worker != k {
			return errors.Errorf("partition: assignment #%d is labeled as worker %d", k, a.Worker)
		}
		if a.Stride < 1 {
			return errors.Errorf("partition: assignment %s has invalid stride", a)
		}
		if a.Len() == 0 {
			return errors.Errorf("partition: assignment %s is empty", a)
		}
		for u := range a.Units() {
			if u < 0 || u >= p.Units {
				return errors.Errorf("partition: assignment %s covers unit %d outside of [0, %d)", a, u, p.Units)
			}
			if seen[u] {
				return errors.Errorf("partition: unit %d is covered more than once (last by %s)", u, a)
			}
			seen[u] = true
		}
	}
	for u, ok := range seen {
		if !ok {
			return errors.Errorf("partition: unit %d is not covered by any assignment", u)
		}
	}
	return nil
}

// String implements fmt.Stringer.
func (p Plan) String() string {
	parts := make([]string, len(p.Assignments))
	for k, a := range p.Assignments {
		parts[k] = a.String()
	}
	return fmt.Sprintf("Plan(%s, units=%d, workers=%d: %s)", p.Policy, p.Units, p.Workers, strings.Join(parts, ", "))
}
