package access

// Role is a caller role carried in the access token.
type Role string

const (
	RoleGuest Role = "guest"
	RoleHost  Role = "host"
	RoleAdmin Role = "admin"
)

// Action is an operation guarded by the permission table.
type Action string

const (
	ActionProcessPayment     Action = "process_payment"
	ActionRefundPayment      Action = "refund_payment"
	ActionViewReceipt        Action = "view_receipt"
	ActionViewCentralBalance Action = "view_central_balance"
	ActionReconcile          Action = "reconcile"
	ActionSeedLedgers        Action = "seed_ledgers"
)

var permissions = map[Role]map[Action]bool{
	RoleGuest: {
		ActionProcessPayment: true,
		ActionViewReceipt:    true,
	},
	RoleHost: {
		ActionViewReceipt:   true,
		ActionRefundPayment: true,
	},
	RoleAdmin: {
		ActionProcessPayment:     true,
		ActionRefundPayment:      true,
		ActionViewReceipt:        true,
		ActionViewCentralBalance: true,
		ActionReconcile:          true,
		ActionSeedLedgers:        true,
	},
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := permissions[r]
	return ok
}

// Allowed reports whether role may perform action. Unknown roles may do nothing.
func Allowed(role Role, action Action) bool {
	return permissions[role][action]
}
