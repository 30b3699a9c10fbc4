package templates

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vm "github.com/ericfisherdev/postpilot/internal/adapter/driving/web/viewmodel"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, c.Render(context.Background(), &sb))
	return sb.String()
}

func TestLayout_RendersChildrenInsideMain(t *testing.T) {
	child := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<p>inner</p>")
		return err
	})

	var sb strings.Builder
	ctx := templ.WithChildren(context.Background(), child)
	require.NoError(t, Layout(`Tips & "Tricks"`).Render(ctx, &sb))
	html := sb.String()

	assert.Contains(t, html, "<title>Tips &amp; &#34;Tricks&#34;</title>")
	assert.Contains(t, html, "<main><p>inner</p></main>")
}

func TestPreview(t *testing.T) {
	t.Run("within limit", func(t *testing.T) {
		html := render(t, Preview(vm.PreviewViewModel{
			HTML: "<p>hi</p>", Words: 1, Characters: 2, Limit: 3000,
		}))

		assert.Contains(t, html, `<div class="post"><p>hi</p></div>`)
		assert.Contains(t, html, `<p class="preview-stats">1 words · 2/3000 characters</p>`)
	})

	t.Run("over limit is flagged", func(t *testing.T) {
		html := render(t, Preview(vm.PreviewViewModel{Words: 900, Characters: 3100, Limit: 3000, OverLimit: true}))

		assert.Contains(t, html, `<p class="preview-stats" data-over>`)
	})
}

func TestPayment_EscapesAttributes(t *testing.T) {
	html := render(t, Payment(vm.PageViewModel{
		Title:    "Pricing",
		KeyID:    `rzp_"x"`,
		Currency: "INR",
		Plans: []vm.PlanCard{
			{Plan: "starter", Name: "Starter", Price: 499, Purchasable: true, Highlighted: true},
			{Plan: "free", Name: "Free"},
		},
	}))

	assert.Contains(t, html, `data-key="rzp_&#34;x&#34;"`)
	assert.Contains(t, html, `<article class="plan card" data-highlighted>`)
	assert.Contains(t, html, `data-plan="starter" data-amount="499">Buy Starter</button>`)
	assert.Equal(t, 1, strings.Count(html, "<button"))
	assert.NotContains(t, html, "Payments are not configured")
}

func TestLanding_LinksInsteadOfCheckout(t *testing.T) {
	html := render(t, Landing(vm.PageViewModel{
		Title: "PostPilot",
		Plans: []vm.PlanCard{{Plan: "starter", Name: "Starter", Purchasable: true}},
	}))

	assert.Contains(t, html, `<a class="button" href="/payment">Choose</a>`)
	assert.NotContains(t, html, "<button")
}
