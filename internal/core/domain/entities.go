package domain

// Role represents a user's BPJS classification (or the hospital admin role)
type Role string

const (
	RoleBPJS          Role = "BPJS"
	RoleNonBPJS       Role = "NON_BPJS"
	RoleNonActiveBPJS Role = "NON_ACTIVE_BPJS"
	RoleHospitalAdmin Role = "HOSPITAL_ADMIN"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleBPJS, RoleNonBPJS, RoleNonActiveBPJS, RoleHospitalAdmin:
		return true
	}
	return false
}

// PayLaterStatus is the lifecycle state of a PayLater financing request
type PayLaterStatus string

const (
	PayLaterPending  PayLaterStatus = "PENDING"
	PayLaterApproved PayLaterStatus = "APPROVED"
	PayLaterRejected PayLaterStatus = "REJECTED"
	PayLaterPaid     PayLaterStatus = "PAID"
)

// IsActive reports whether the status counts toward the one-active-paylater limit
func (s PayLaterStatus) IsActive() bool {
	return s == PayLaterPending || s == PayLaterApproved
}

// TreatmentStatus is the lifecycle state of a treatment booking.
// APPROVED is part of the canonical set; it is only reachable through approval.
type TreatmentStatus string

const (
	TreatmentPending   TreatmentStatus = "PENDING"
	TreatmentApproved  TreatmentStatus = "APPROVED"
	TreatmentOngoing   TreatmentStatus = "ONGOING"
	TreatmentCompleted TreatmentStatus = "COMPLETED"
	TreatmentCancelled TreatmentStatus = "CANCELLED"
)

// Currency used for every cost figure
const Currency = "IDR"
