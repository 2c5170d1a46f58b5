package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowed(t *testing.T) {
	all := []Action{
		ActionProcessPayment,
		ActionRefundPayment,
		ActionViewReceipt,
		ActionViewCentralBalance,
		ActionReconcile,
		ActionSeedLedgers,
	}

	want := map[Role][]Action{
		RoleGuest: {ActionProcessPayment, ActionViewReceipt},
		RoleHost:  {ActionViewReceipt, ActionRefundPayment},
		RoleAdmin: all,
		"owner":   nil,
		"":        nil,
	}

	for role, allowed := range want {
		for _, action := range all {
			assert.Equal(t, contains(allowed, action), Allowed(role, action), "role %q action %q", role, action)
		}
	}
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleGuest.Valid())
	assert.True(t, RoleHost.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("superuser").Valid())
}

func contains(actions []Action, a Action) bool {
	for _, x := range actions {
		if x == a {
			return true
		}
	}
	return false
}
