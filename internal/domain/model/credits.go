package model

// CanGenerate reports whether u may request another generation: paid plans
// are unmetered, free users need at least one credit.
func (u User) CanGenerate() bool {
	return !u.Plan.Metered() || u.Credits > 0
}

// ChargeIfFree returns u with one credit debited when it is on a metered
// plan. Paid users come back unchanged. ok is false, and u is returned as
// is, when a free user has nothing left to spend.
func (u User) ChargeIfFree() (charged User, ok bool) {
	if !u.CanGenerate() {
		return u, false
	}
	if u.Plan.Metered() {
		u.Credits--
	}
	return u, true
}

// CreditsRemaining is the value shown after a charge: the post-charge
// balance for free users, PaidCreditsDisplay otherwise.
func (u User) CreditsRemaining() int {
	if u.Plan.Metered() {
		return u.Credits
	}
	return PaidCreditsDisplay
}
