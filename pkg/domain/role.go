package domain

// RoleSuperAdmin is the reserved role label fixed at bootstrap. The address
// seeded with this label is the only one allowed to assign or issue
// credentials, and the designation is never reassigned.
const RoleSuperAdmin = "super admin"

// TreasureID identifies a placed treasure. IDs are allocated sequentially
// starting at 1 during board initialization and never reused.
type TreasureID int64

// IsValid reports whether the ID is in the allocatable range.
func (id TreasureID) IsValid() bool {
	return id > 0
}
