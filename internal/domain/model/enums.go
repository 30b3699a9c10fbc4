package model

import "fmt"

// Plan represents a subscription tier.
type Plan string

const (
	PlanFree      Plan = "free"
	PlanStarter   Plan = "starter"
	PlanUnlimited Plan = "unlimited"
)

// ParsePlan converts a raw plan name into a Plan, rejecting unknown values.
func ParsePlan(s string) (Plan, error) {
	switch p := Plan(s); p {
	case PlanFree, PlanStarter, PlanUnlimited:
		return p, nil
	default:
		return "", fmt.Errorf("unknown plan %q", s)
	}
}

// Metered returns true for plans whose generations consume credits.
func (p Plan) Metered() bool {
	return p == PlanFree
}

// Purchasable returns true for plans that can be bought through the payment gateway.
func (p Plan) Purchasable() bool {
	return p == PlanStarter || p == PlanUnlimited
}

// PostFormat selects the structure of a generated post.
type PostFormat string

const (
	FormatStory      PostFormat = "story"
	FormatHowTo      PostFormat = "howto"
	FormatList       PostFormat = "list"
	FormatContrarian PostFormat = "contrarian"
	FormatQuestion   PostFormat = "question"
)

// ParsePostFormat returns FormatStory for an empty value and an error for
// anything that is not a known format.
func ParsePostFormat(s string) (PostFormat, error) {
	if s == "" {
		return FormatStory, nil
	}
	switch f := PostFormat(s); f {
	case FormatStory, FormatHowTo, FormatList, FormatContrarian, FormatQuestion:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q", s)
	}
}

// PostLength selects the word range of a generated post.
type PostLength string

const (
	LengthShort  PostLength = "short"
	LengthMedium PostLength = "medium"
	LengthLong   PostLength = "long"
)

// ParsePostLength returns LengthMedium for an empty value and an error for
// anything that is not a known length.
func ParsePostLength(s string) (PostLength, error) {
	if s == "" {
		return LengthMedium, nil
	}
	switch l := PostLength(s); l {
	case LengthShort, LengthMedium, LengthLong:
		return l, nil
	default:
		return "", fmt.Errorf("unknown length %q", s)
	}
}
