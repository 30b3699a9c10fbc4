package model

import "time"

const (
	// FreeCredits is the allotment every new user starts with.
	FreeCredits = 3

	// StarterCredits is granted on a verified starter purchase.
	StarterCredits = 50

	// UnlimitedCredits is the display value stored for unlimited users. The
	// credit policy never consults it; Plan decides whether a user is metered.
	UnlimitedCredits = 999999

	// PaidCreditsDisplay is reported as creditsRemaining for paid plans.
	PaidCreditsDisplay = 999
)

// User is the plan state tracked per identifier (usually an email address).
type User struct {
	ID            string
	Plan          Plan
	Credits       int
	LastPaymentAt *time.Time
}

// DefaultUser returns the record every unknown identifier reads as.
func DefaultUser(id string) User {
	return User{
		ID:      id,
		Plan:    PlanFree,
		Credits: FreeCredits,
	}
}

// UserPatch holds partial updates for a User. Nil fields leave the current
// value untouched.
type UserPatch struct {
	Plan          *Plan
	Credits       *int
	LastPaymentAt *time.Time
}

// Apply merges the patch onto u and returns the result.
func (p UserPatch) Apply(u User) User {
	if p.Plan != nil {
		u.Plan = *p.Plan
	}
	if p.Credits != nil {
		u.Credits = *p.Credits
	}
	if p.LastPaymentAt != nil {
		t := p.LastPaymentAt.UTC()
		u.LastPaymentAt = &t
	}
	return u
}

// Allotment returns the credits granted when a user moves onto plan p.
func (p Plan) Allotment() int {
	switch p {
	case PlanFree:
		return FreeCredits
	case PlanStarter:
		return StarterCredits
	default:
		return UnlimitedCredits
	}
}
