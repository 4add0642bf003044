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

package weight

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/DataDog/hyperloglog"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lightstep/varopt"
	"golang.org/x/exp/slices"

	"github.com/modkit/modkit/runtime/codec"
)

const (
	// maxTrackedCalls bounds the number of distinct calls a Meter tracks.
	// Cold calls are evicted, so a summary reflects recent traffic.
	maxTrackedCalls = 1024

	// payerRegisters is the hyperloglog register count. With n registers a
	// hyperloglog uses roughly n bytes, so every tracked call costs about a
	// kilobyte. Must be a power of 2.
	payerRegisters = 1024

	// signerSampleSize caps the reservoir of sampled signers per call.
	signerSampleSize = 128
)

// A Meter accumulates per-call dispatch accounting for fee estimation
// tooling. For every dispatched call it tracks the dispatch count, the
// cumulative weight, an approximate count of distinct fee-paying signers,
// and a weight-biased reservoir sample of those signers. As an example,
// recording
//
//	m.Record("counter.SetValue", "alice", weight.Info{Weight: 10, PaysFee: true})
//	m.Record("counter.SetValue", "bob", weight.Info{Weight: 10, PaysFee: true})
//	m.Record("counter.SetValue", "alice", weight.Info{Weight: 10, PaysFee: true})
//
// yields a summary for counter.SetValue with count 3, total weight 30, and
// roughly 2 distinct payers.
type Meter struct {
	mu    sync.Mutex // guards the following fields
	rng   *rand.Rand
	calls *lru.Cache[string, *callSummary] // keyed by "<module>.<call>"
}

// callSummary summarizes the observed dispatches of a single call.
type callSummary struct {
	count  uint64                   // number of dispatches
	total  Weight                   // cumulative weight
	payers *hyperloglog.HyperLogLog // counts distinct fee-paying signers
	sample *varopt.Varopt           // weight-biased reservoir of signers
}

// NewMeter returns a new, empty Meter.
func NewMeter() (*Meter, error) {
	calls, err := lru.New[string, *callSummary](maxTrackedCalls)
	if err != nil {
		return nil, err
	}
	return &Meter{
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		calls: calls,
	}, nil
}

// Record adds one dispatched call to the meter. call is the qualified call
// name ("<module>.<call>"); signer is the signing account of the origin, or
// empty for unsigned origins; info is the call's pre-dispatch
// classification.
func (m *Meter) Record(call string, signer string, info Info) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.calls.Get(call)
	if !ok {
		var err error
		s, err = newCallSummary(m.rng)
		if err != nil {
			return err
		}
		m.calls.Add(call, s)
	}

	s.count++
	s.total += info.Weight

	// Only fee-paying signed calls feed the payer estimate and the sample.
	if !info.PaysFee || signer == "" {
		return nil
	}

	// The hyperloglog wants values drawn uniformly from the whole uint32
	// space, so hash the signer before feeding it.
	s.payers.Add(hyperloglog.Murmur64(hashSigner(signer)))

	w := float64(info.Weight)
	if w <= 0 {
		// varopt rejects non-positive weights; a free-weight call still
		// counts as one observation.
		w = 1
	}
	if _, err := s.sample.Add(signer, w); err != nil {
		return fmt.Errorf("cannot sample signer %q: %w", signer, err)
	}
	return nil
}

// newCallSummary returns a callSummary with zero observed dispatches.
func newCallSummary(rng *rand.Rand) (*callSummary, error) {
	payers, err := hyperloglog.New(payerRegisters)
	if err != nil {
		return nil, err
	}
	return &callSummary{
		payers: payers,
		sample: varopt.New(signerSampleSize, rng),
	}, nil
}

// hashSigner buckets a signer deterministically. The hash is stable across
// processes, so estimates survive a host restart that replays traffic.
func hashSigner(signer string) uint64 {
	var h codec.Hasher
	h.WriteString(signer)
	return h.Sum64()
}

// CallLoad is the exported accounting of a single call.
type CallLoad struct {
	Call   string         // qualified call name
	Count  uint64         // number of dispatches
	Total  Weight         // cumulative weight
	Payers uint64         // approximate number of distinct fee-paying signers
	Sample []SignerWeight // sampled signers, heaviest first
}

// SignerWeight is one sampled signer and the cumulative sampled weight
// attributed to it.
type SignerWeight struct {
	Signer string
	Weight float64
}

// Summary returns the accounting of every tracked call, ordered by call
// name. The reported values are approximations over recent traffic: cold
// calls may have been evicted, payer counts are hyperloglog estimates, and
// the signer list is a bounded sample.
func (m *Meter) Summary() []CallLoad {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := m.calls.Keys()
	slices.Sort(names)

	out := make([]CallLoad, 0, len(names))
	for _, call := range names {
		s, ok := m.calls.Get(call)
		if !ok {
			continue
		}
		cl := CallLoad{
			Call:   call,
			Count:  s.count,
			Total:  s.total,
			Payers: s.payers.Count(),
		}
		for i := 0; i < s.sample.Size(); i++ {
			x, w := s.sample.Get(i)
			cl.Sample = append(cl.Sample, SignerWeight{Signer: x.(string), Weight: w})
		}
		sort.Slice(cl.Sample, func(i, j int) bool {
			if cl.Sample[i].Weight != cl.Sample[j].Weight {
				return cl.Sample[i].Weight > cl.Sample[j].Weight
			}
			return cl.Sample[i].Signer < cl.Sample[j].Signer
		})
		out = append(out, cl)
	}
	return out
}

// Reset discards all accumulated accounting.
func (m *Meter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Purge()
}
