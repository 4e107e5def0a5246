package rbac

// Privilege names consumed by the approval engine.
// Rows live in the privileges table; only the execute flag is
// consulted by approval decisions.
const (
	// ApproveOnboardAll carries approval rights over every batch year.
	ApproveOnboardAll = "APPROVE_ONBOARD_ALL"
	// ApproveOnboardBatch carries approval rights scoped to the batch
	// years in the membership's params.
	ApproveOnboardBatch = "APPROVE_ONBOARD_BATCH"
	// ManageMemberships gates the admin membership-toggle endpoint.
	ManageMemberships = "MANAGE_MEMBERSHIPS"
)

// Membership types the admin toggle flips between. Batch-committee
// types are free-form strings and get their meaning through the
// privilege matrix instead.
const (
	TypeAdminL1 = "ADMIN_L1"
	TypeAdminL2 = "ADMIN_L2"
)
