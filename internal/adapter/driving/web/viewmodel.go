package web

import (
	"fmt"
	"strings"
	"unicode/utf8"

	vm "github.com/ericfisherdev/postpilot/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/postpilot/internal/domain/model"
)

// linkedInCharLimit is the maximum length of a LinkedIn post body.
const linkedInCharLimit = 3000

// Plan prices in major currency units, as charged by the payment page.
const (
	starterPrice   = 499
	unlimitedPrice = 999
)

// currencySymbols maps ISO codes to display symbols. Unknown codes are shown
// as a prefix.
var currencySymbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

func priceLabel(currency string, amount int64) string {
	if amount == 0 {
		return "Free"
	}
	if sym, ok := currencySymbols[currency]; ok {
		return fmt.Sprintf("%s%d", sym, amount)
	}
	return fmt.Sprintf("%s %d", currency, amount)
}

// toPlanCards builds the pricing table for currency.
func toPlanCards(currency string) []vm.PlanCard {
	return []vm.PlanCard{
		{
			Plan:        string(model.PlanFree),
			Name:        "Free",
			PriceLabel:  priceLabel(currency, 0),
			CreditsText: fmt.Sprintf("%d posts", model.FreeCredits),
			Features:    []string{"All five post formats", "Tone and length control"},
		},
		{
			Plan:        string(model.PlanStarter),
			Name:        "Starter",
			Price:       starterPrice,
			PriceLabel:  priceLabel(currency, starterPrice),
			CreditsText: fmt.Sprintf("%d posts", model.StarterCredits),
			Features:    []string{"Everything in Free", "Live post preview"},
			Highlighted: true,
			Purchasable: true,
		},
		{
			Plan:        string(model.PlanUnlimited),
			Name:        "Unlimited",
			Price:       unlimitedPrice,
			PriceLabel:  priceLabel(currency, unlimitedPrice),
			CreditsText: "Unlimited posts",
			Features:    []string{"Everything in Starter", "No monthly cap"},
			Purchasable: true,
		},
	}
}

func formatOptions() []vm.Option {
	return []vm.Option{
		{Value: string(model.FormatStory), Label: "Personal story", Default: true},
		{Value: string(model.FormatHowTo), Label: "How-to guide"},
		{Value: string(model.FormatList), Label: "List of tips"},
		{Value: string(model.FormatContrarian), Label: "Contrarian take"},
		{Value: string(model.FormatQuestion), Label: "Discussion question"},
	}
}

func lengthOptions() []vm.Option {
	return []vm.Option{
		{Value: string(model.LengthShort), Label: "Short (100-150 words)"},
		{Value: string(model.LengthMedium), Label: "Medium (150-250 words)", Default: true},
		{Value: string(model.LengthLong), Label: "Long (250-400 words)"},
	}
}

// toPreviewViewModel renders content and measures it against the LinkedIn
// character limit.
func toPreviewViewModel(content string) vm.PreviewViewModel {
	chars := utf8.RuneCountInString(content)
	return vm.PreviewViewModel{
		HTML:       RenderPost(content),
		Words:      len(strings.Fields(content)),
		Characters: chars,
		Limit:      linkedInCharLimit,
		OverLimit:  chars > linkedInCharLimit,
	}
}
