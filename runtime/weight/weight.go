// Copyright 2023 The ModKit Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package weight defines the cost model for module operations. Every
// operation declares a Policy; before an operation runs, the generated
// classifier queries the policy against the operation's bound arguments to
// produce an Info: how much the call weighs, which dispatch class it belongs
// to, and whether the caller pays a fee for it.
package weight

import "fmt"

// Weight is an opaque non-negative cost unit assigned to an operation, used
// for resource accounting prior to execution. Its magnitude is defined by the
// policies that produce it; this package does not interpret it.
type Weight uint64

// Class categorizes a call for scheduling and admission purposes.
type Class int

const (
	// Normal calls compete for the ordinary execution budget.
	Normal Class = iota

	// Operational calls are infrastructure operations that take priority
	// over Normal calls.
	Operational

	// Mandatory calls are always admitted, regardless of budget. Reserve
	// Mandatory for operations the enclosing system cannot function
	// without.
	Mandatory
)

// String implements fmt.Stringer.
func (c Class) String() string {
	switch c {
	case Normal:
		return "Normal"
	case Operational:
		return "Operational"
	case Mandatory:
		return "Mandatory"
	default:
		return fmt.Sprintf("Class(%d)", int(c))
	}
}

// Info is the classification of a single call value, computed per invocation
// and never stored.
type Info struct {
	Weight  Weight
	Class   Class
	PaysFee bool
}

// Policy is an operation's declared cost policy. The classifier invokes
// exactly these three queries, passing the call variant's bound arguments in
// declared order. Implementations must treat args as read-only: the same
// argument values are dispatched afterwards.
type Policy interface {
	Weigh(args []any) Weight
	Classify(args []any) Class
	PaysFee(args []any) bool
}

// Constant is a Policy that ignores the arguments.
type Constant struct {
	Weight Weight
	Class  Class
	Free   bool // if true, the caller pays no fee
}

var _ Policy = Constant{}

// Fixed returns a Constant policy with the given weight, Normal class, and
// fee payment enabled. Use InClass and NoFee to adjust the other two answers:
//
//	weight.Fixed(10)
//	weight.Fixed(10).InClass(weight.Operational)
//	weight.Fixed(10).NoFee()
func Fixed(w Weight) Constant {
	return Constant{Weight: w}
}

// InClass returns a copy of the policy with the given dispatch class.
func (c Constant) InClass(class Class) Constant {
	c.Class = class
	return c
}

// NoFee returns a copy of the policy that charges no fee.
func (c Constant) NoFee() Constant {
	c.Free = true
	return c
}

// Weigh implements Policy.
func (c Constant) Weigh([]any) Weight { return c.Weight }

// Classify implements Policy.
func (c Constant) Classify([]any) Class { return c.Class }

// PaysFee implements Policy.
func (c Constant) PaysFee([]any) bool { return !c.Free }

// Func is a Policy computed from the bound arguments. Nil fields fall back
// to weight 0, class Normal, and fee payment enabled.
type Func struct {
	WeighFn    func(args []any) Weight
	ClassifyFn func(args []any) Class
	PaysFeeFn  func(args []any) bool
}

var _ Policy = Func{}

// Weigh implements Policy.
func (f Func) Weigh(args []any) Weight {
	if f.WeighFn == nil {
		return 0
	}
	return f.WeighFn(args)
}

// Classify implements Policy.
func (f Func) Classify(args []any) Class {
	if f.ClassifyFn == nil {
		return Normal
	}
	return f.ClassifyFn(args)
}

// PaysFee implements Policy.
func (f Func) PaysFee(args []any) bool {
	if f.PaysFeeFn == nil {
		return true
	}
	return f.PaysFeeFn(args)
}
