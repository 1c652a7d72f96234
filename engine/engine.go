/*
engine.go - Fare market processing facade

PURPOSE:
  Ties the pipeline together for one pricing request: for each base fare
  in a fare market, look up the matching negotiated-fare rules and walk
  them, collecting derived fare variants into the market.

CONCURRENCY:
  An Engine is safe for concurrent requests: every ProcessFareMarket call
  builds its own walker and selector state. The injected store and
  converter must themselves be safe for concurrent reads.

ERROR MODEL:
  A RuleError abandons the current fare only; the fare is recorded as
  failed for this category and the walk continues. Store/infra errors
  outside the per-rule boundary abort the request.
*/
package engine

import (
	"context"

	"github.com/warp/fare-engine/pricing"
	"github.com/warp/fare-engine/rules"
)

// Engine derives negotiated fare variants for fare markets.
type Engine struct {
	store   rules.Store
	conv    pricing.Converter
	hier    *pricing.PaxHierarchy
	diag    pricing.DiagSink
	qualify QualifierValidator
}

// Option configures an Engine.
type Option func(*Engine)

// WithDiag installs a diagnostic sink.
func WithDiag(d pricing.DiagSink) Option { return func(e *Engine) { e.diag = d } }

// WithHierarchy overrides the passenger-type hierarchy table.
func WithHierarchy(h *pricing.PaxHierarchy) Option { return func(e *Engine) { e.hier = h } }

// WithQualifierValidator installs the qualifier collaborator.
func WithQualifierValidator(q QualifierValidator) Option { return func(e *Engine) { e.qualify = q } }

// New creates an engine over a rule store and currency converter.
func New(store rules.Store, conv pricing.Converter, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		conv:    conv,
		hier:    pricing.DefaultPaxHierarchy(),
		diag:    pricing.NopSink{},
		qualify: AlwaysPassQualifiers{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is the outcome of one fare market walk.
type Result struct {
	Derived []pricing.DerivedFare
	Failed  []pricing.FareFailure
}

// ProcessFareMarket derives variants for every base fare in the market
// and appends them to the market's derived collection.
func (e *Engine) ProcessFareMarket(ctx context.Context, market *pricing.FareMarket, txn pricing.TxnContext) (Result, error) {
	var res Result
	if txn.BypassNegotiated {
		return res, nil
	}

	walker := NewWalker(e.store, e.conv, e.hier, e.diag, e.qualify)

	for _, base := range market.Fares {
		key := rules.RuleKey{
			Vendor:     base.Vendor,
			Carrier:    base.Carrier,
			Tariff:     base.Tariff,
			RuleNumber: base.RuleNumber,
		}
		matched, err := e.store.GetRules(ctx, key, txn.Date)
		if err != nil {
			return res, err
		}

		for _, rule := range matched {
			derived, ruleErr := walker.ProcessRule(ctx, base, rule, txn)
			if ruleErr != nil {
				// Abandon this fare for the category; keep walking the
				// market.
				if e.diag.Active() {
					e.diag.Printf("fare %s: %v", base.FareClass, ruleErr)
				}
				res.Failed = append(res.Failed, pricing.FareFailure{
					FareClass: base.FareClass,
					Reason:    ruleErr.Error(),
				})
				break
			}
			res.Derived = append(res.Derived, derived...)
		}
	}

	market.Derived = append(market.Derived, res.Derived...)
	return res, nil
}
