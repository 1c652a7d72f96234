package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcilePermissions_OwnerDenyWinsPerFlag(t *testing.T) {
	// GIVEN a fully permissive source and an owner that denies sell only
	source := PermissionTuple{Update: true, Redistribute: true, Sell: true, Ticket: true}
	owner := PermissionTuple{Update: true, Redistribute: true, Sell: false, Ticket: true}

	// WHEN reconciling for the requester's own agency
	out, err := ReconcilePermissions(source, owner, true, false)

	// THEN sell is denied and no other flag is dragged down with it
	require.NoError(t, err)
	assert.False(t, out.Sell)
	assert.True(t, out.Ticket)
	assert.True(t, out.Update)
	assert.True(t, out.Redistribute)
}

func TestReconcilePermissions_CrossAgencyNeedsSourceRedistribute(t *testing.T) {
	// GIVEN a source that does not allow redistribution
	source := PermissionTuple{Sell: true, Ticket: true}
	owner := PermissionTuple{Sell: true, Ticket: true, Redistribute: true}

	// WHEN a different agency requests the fare
	_, err := ReconcilePermissions(source, owner, false, false)

	// THEN the fare cannot be processed for that requester at all
	assert.ErrorIs(t, err, ErrRedistributionDenied)
}

func TestReconcilePermissions_OwnerRevokesOnwardRedistribution(t *testing.T) {
	source := PermissionTuple{Update: true, Redistribute: true, Sell: true, Ticket: true}
	owner := PermissionTuple{Update: true, Redistribute: false, Sell: true, Ticket: true}

	// Cross-agency: the owner side may revoke onward redistribution.
	out, err := ReconcilePermissions(source, owner, false, false)
	require.NoError(t, err)
	assert.False(t, out.Redistribute)

	// Same agency: the requester's own redistribute flag stands.
	out, err = ReconcilePermissions(source, owner, true, false)
	require.NoError(t, err)
	assert.True(t, out.Redistribute)
}

func TestReconcilePermissions_TicketingContextDeny(t *testing.T) {
	// GIVEN a reconciled tuple that cannot ticket
	source := PermissionTuple{Redistribute: true, Sell: true, Ticket: true}
	owner := PermissionTuple{Redistribute: true, Sell: true, Ticket: false}

	// WHEN reconciling in a ticketing transaction
	_, err := ReconcilePermissions(source, owner, true, true)

	// THEN the deny is immediate
	assert.ErrorIs(t, err, ErrTicketingDenied)

	// Outside ticketing context the same tuple reconciles fine.
	out, err := ReconcilePermissions(source, owner, true, false)
	require.NoError(t, err)
	assert.False(t, out.Ticket)
	assert.True(t, out.Sell)
}
