// Package store provides rules.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/fare-engine/pricing"
	"github.com/warp/fare-engine/rules"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	rules     map[rules.RuleKey][]rules.Rule
	security  map[itemKey][]rules.SecurityRecord
	calcs     map[itemKey][]rules.MarkupCalculate
	markups   map[pricing.PseudoCityCode][]rules.MarkupControl
	retailers map[pricing.PseudoCityCode][]rules.FareRetailerRule
}

type itemKey struct {
	Vendor pricing.VendorCode
	ItemNo int
}

func NewMemory() *Memory {
	return &Memory{
		rules:     make(map[rules.RuleKey][]rules.Rule),
		security:  make(map[itemKey][]rules.SecurityRecord),
		calcs:     make(map[itemKey][]rules.MarkupCalculate),
		markups:   make(map[pricing.PseudoCityCode][]rules.MarkupControl),
		retailers: make(map[pricing.PseudoCityCode][]rules.FareRetailerRule),
	}
}

// -----------------------------------------------------------------------------
// Loading (fixtures, scenario seeding)
// -----------------------------------------------------------------------------

func (m *Memory) PutRule(r rules.Rule) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules[r.Key] = append(m.rules[r.Key], r)
}

func (m *Memory) PutSecurity(vendor pricing.VendorCode, itemNo int, recs []rules.SecurityRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := append([]rules.SecurityRecord(nil), recs...)
	sort.Slice(cp, func(i, j int) bool { return cp[i].SeqNo < cp[j].SeqNo })
	m.security[itemKey{vendor, itemNo}] = cp
}

func (m *Memory) PutCalculation(vendor pricing.VendorCode, itemNo int, rows []rules.MarkupCalculate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := append([]rules.MarkupCalculate(nil), rows...)
	sort.Slice(cp, func(i, j int) bool { return cp[i].SeqNo < cp[j].SeqNo })
	m.calcs[itemKey{vendor, itemNo}] = cp
}

func (m *Memory) PutMarkupControl(mc rules.MarkupControl) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markups[mc.OwnerPCC] = append(m.markups[mc.OwnerPCC], mc)
}

func (m *Memory) PutFareRetailerRule(r rules.FareRetailerRule) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := append(m.retailers[r.SourcePCC], r)
	sort.Slice(list, func(i, j int) bool { return list[i].SeqNo < list[j].SeqNo })
	m.retailers[r.SourcePCC] = list
}

// Reset drops everything. Dev/demo use.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = make(map[rules.RuleKey][]rules.Rule)
	m.security = make(map[itemKey][]rules.SecurityRecord)
	m.calcs = make(map[itemKey][]rules.MarkupCalculate)
	m.markups = make(map[pricing.PseudoCityCode][]rules.MarkupControl)
	m.retailers = make(map[pricing.PseudoCityCode][]rules.FareRetailerRule)
}

// -----------------------------------------------------------------------------
// rules.Store
// -----------------------------------------------------------------------------

func (m *Memory) GetRules(_ context.Context, key rules.RuleKey, _ time.Time) ([]rules.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]rules.Rule(nil), m.rules[key]...), nil
}

func (m *Memory) GetSecurity(_ context.Context, vendor pricing.VendorCode, itemNo int) ([]rules.SecurityRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]rules.SecurityRecord(nil), m.security[itemKey{vendor, itemNo}]...), nil
}

func (m *Memory) GetCalculation(_ context.Context, vendor pricing.VendorCode, itemNo int) ([]rules.MarkupCalculate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]rules.MarkupCalculate(nil), m.calcs[itemKey{vendor, itemNo}]...), nil
}

func (m *Memory) GetMarkupControl(_ context.Context, pcc pricing.PseudoCityCode, key rules.RuleKey, at time.Time) ([]rules.MarkupControl, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []rules.MarkupControl
	for _, mc := range m.markups[pcc] {
		if mc.Vendor != key.Vendor || mc.Carrier != key.Carrier {
			continue
		}
		if mc.Tariff != key.Tariff || mc.RuleNumber != key.RuleNumber {
			continue
		}
		out = append(out, mc)
	}
	return out, nil
}

func (m *Memory) GetFareRetailerRules(_ context.Context, sourcePCC pricing.PseudoCityCode, at time.Time) ([]rules.FareRetailerRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []rules.FareRetailerRule
	for _, r := range m.retailers[sourcePCC] {
		if !r.Active {
			continue
		}
		if !r.EffectiveFrom.IsZero() && at.Before(r.EffectiveFrom) {
			continue
		}
		if !r.DiscontinueAt.IsZero() && at.After(r.DiscontinueAt) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

var _ rules.Store = (*Memory)(nil)
