package negotiated

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/warp/fare-engine/pricing"
	"github.com/warp/fare-engine/rules"
)

func negBase() pricing.BaseFare {
	return pricing.BaseFare{
		FareClass:       "YNEG",
		Vendor:          "ATP",
		Carrier:         "BA",
		PaxType:         pricing.PaxNeg,
		DisplayCategory: pricing.DisplayNet,
	}
}

func sellCtx() pricing.TxnContext {
	return pricing.TxnContext{
		Date:  time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Agent: pricing.Agent{PCC: "W0H3", Nation: "GB"},
	}
}

func TestValidateItem_Basics(t *testing.T) {
	base := negBase()
	ctx := sellCtx()

	tests := []struct {
		name string
		item rules.RuleItem
		want GateStatus
	}{
		{
			name: "blank item passes",
			item: rules.RuleItem{ItemNo: 1},
			want: GatePass,
		},
		{
			name: "matching pax type passes",
			item: rules.RuleItem{ItemNo: 1, PaxType: pricing.PaxNeg},
			want: GatePass,
		},
		{
			name: "pax type mismatch fails",
			item: rules.RuleItem{ItemNo: 1, PaxType: pricing.PaxJCB},
			want: GateFail,
		},
		{
			name: "not yet effective fails",
			item: rules.RuleItem{ItemNo: 1, EffectiveFrom: ctx.Date.AddDate(0, 1, 0)},
			want: GateFail,
		},
		{
			name: "discontinued fails",
			item: rules.RuleItem{ItemNo: 1, DiscontinueAt: ctx.Date.AddDate(0, -1, 0)},
			want: GateFail,
		},
		{
			name: "inside window passes",
			item: rules.RuleItem{
				ItemNo:        1,
				EffectiveFrom: ctx.Date.AddDate(0, -1, 0),
				DiscontinueAt: ctx.Date.AddDate(0, 1, 0),
			},
			want: GatePass,
		},
		{
			name: "unavailable tag fails",
			item: rules.RuleItem{ItemNo: 1, UnavailTag: 'X'},
			want: GateFail,
		},
		{
			name: "text-only tag skips",
			item: rules.RuleItem{ItemNo: 1, UnavailTag: 'Y'},
			want: GateSkip,
		},
		{
			name: "carrier restriction fails for other carrier",
			item: rules.RuleItem{ItemNo: 1, RestrictionCarrier: "LH"},
			want: GateFail,
		},
		{
			name: "carrier restriction passes for governing carrier",
			item: rules.RuleItem{ItemNo: 1, RestrictionCarrier: "BA"},
			want: GatePass,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateItem(tt.item, base, ctx)
			assert.Equal(t, tt.want, got.Status, got.Reason)
		})
	}
}

func TestValidateItem_NetTicketWithoutTicketingData(t *testing.T) {
	base := negBase()
	item := rules.RuleItem{ItemNo: 1, DisplayCategory: pricing.DisplayNetTicket}

	got := ValidateItem(item, base, sellCtx())

	assert.Equal(t, GateFail, got.Status)
}

func TestValidateTicketing_Matrix(t *testing.T) {
	base := negBase()
	ctx := sellCtx()
	koreaCtx := sellCtx()
	koreaCtx.Agent.Nation = "KR"

	commission := pricing.NewMoney(10, "USD")
	pct := decimal.NewFromInt(5)
	segments := []rules.SegmentData{{Carrier: "BA", FareBasis: "YNEG"}}

	tests := []struct {
		name   string
		item   rules.RuleItem
		ctx    pricing.TxnContext
		wantOK bool
	}{
		{
			name: "method 1 without commission passes",
			item: rules.RuleItem{Ticketing: &rules.TicketingData{Method: rules.Method1}},
			ctx:  ctx, wantOK: true,
		},
		{
			name: "method 1 with commission fails",
			item: rules.RuleItem{Ticketing: &rules.TicketingData{
				Method: rules.Method1, CommissionAmount: &commission}},
			ctx: ctx, wantOK: false,
		},
		{
			name: "method 2 requires commission",
			item: rules.RuleItem{Ticketing: &rules.TicketingData{Method: rules.Method2}},
			ctx:  ctx, wantOK: false,
		},
		{
			name: "method 2 with commission percent passes",
			item: rules.RuleItem{Ticketing: &rules.TicketingData{
				Method: rules.Method2, CommissionPercent: &pct}},
			ctx: ctx, wantOK: true,
		},
		{
			name: "amount and percent together fail",
			item: rules.RuleItem{Ticketing: &rules.TicketingData{
				Method: rules.Method2, CommissionAmount: &commission, CommissionPercent: &pct}},
			ctx: ctx, wantOK: false,
		},
		{
			name: "method 5 requires commission",
			item: rules.RuleItem{Ticketing: &rules.TicketingData{Method: rules.Method5}},
			ctx:  ctx, wantOK: false,
		},
		{
			name: "method 3 requires segments",
			item: rules.RuleItem{Ticketing: &rules.TicketingData{Method: rules.Method3}},
			ctx:  koreaCtx, wantOK: false,
		},
		{
			name: "method 3 outside Korea fails",
			item: rules.RuleItem{Ticketing: &rules.TicketingData{
				Method: rules.Method3, Segments: segments}},
			ctx: ctx, wantOK: false,
		},
		{
			name: "method 3 in Korea with segments passes",
			item: rules.RuleItem{Ticketing: &rules.TicketingData{
				Method: rules.Method3, Segments: segments}},
			ctx: koreaCtx, wantOK: true,
		},
		{
			name: "segments outside method 3 fail",
			item: rules.RuleItem{Ticketing: &rules.TicketingData{
				Method: rules.Method1, Segments: segments}},
			ctx: ctx, wantOK: false,
		},
		{
			name: "unsupported ticket application indicator fails",
			item: rules.RuleItem{Ticketing: &rules.TicketingData{
				Method: rules.Method1, TicketAppl: 'Z'}},
			ctx: ctx, wantOK: false,
		},
		{
			name: "ticket application B passes",
			item: rules.RuleItem{Ticketing: &rules.TicketingData{
				Method: rules.Method1, TicketAppl: 'B'}},
			ctx: ctx, wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateItem(tt.item, base, tt.ctx)
			if tt.wantOK {
				assert.Equal(t, GatePass, got.Status, got.Reason)
			} else {
				assert.Equal(t, GateFail, got.Status)
			}
		})
	}
}

func TestValidateTicketing_DisplayCategories(t *testing.T) {
	base := negBase()
	ctx := sellCtx()
	pct := decimal.NewFromInt(5)

	// Selling display category may not carry a net method.
	sellingItem := rules.RuleItem{
		DisplayCategory: pricing.DisplaySelling,
		Ticketing:       &rules.TicketingData{Method: rules.Method2, CommissionPercent: &pct},
	}
	assert.Equal(t, GateFail, ValidateItem(sellingItem, base, ctx).Status)

	// Net/ticket display category requires a method.
	ticketItem := rules.RuleItem{
		DisplayCategory: pricing.DisplayNetTicket,
		Ticketing:       &rules.TicketingData{Method: rules.MethodBlank},
	}
	assert.Equal(t, GateFail, ValidateItem(ticketItem, base, ctx).Status)

	// Net/ticket with a method is fine.
	okItem := rules.RuleItem{
		DisplayCategory: pricing.DisplayNetTicket,
		Ticketing:       &rules.TicketingData{Method: rules.Method2, CommissionPercent: &pct},
	}
	assert.Equal(t, GatePass, ValidateItem(okItem, base, ctx).Status)
}
