package web

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown_EmptyInput(t *testing.T) {
	assert.Equal(t, "", RenderMarkdown(""))
}

func TestRenderMarkdown_Bold(t *testing.T) {
	result := RenderMarkdown("**bold text**")
	assert.Contains(t, result, "<strong>bold text</strong>")
}

func TestRenderMarkdown_Link(t *testing.T) {
	result := RenderMarkdown("[click](https://example.com)")
	assert.Contains(t, result, `<a href="https://example.com"`)
	assert.Contains(t, result, "click</a>")
}

func TestRenderMarkdown_SanitizesScript(t *testing.T) {
	result := RenderMarkdown(`<script>alert("xss")</script>`)
	assert.NotContains(t, result, "<script>")
}

func TestRenderMarkdown_GFMStrikethrough(t *testing.T) {
	result := RenderMarkdown("~~deleted~~")
	assert.Contains(t, result, "<del>deleted</del>")
}

func TestRenderPost_EmptyInput(t *testing.T) {
	assert.Equal(t, "", RenderPost(""))
}

func TestRenderPost_KeepsLineBreaks(t *testing.T) {
	result := RenderPost("Most meetings should be emails.\nHere is why.\n\nAgree?")

	assert.Contains(t, result, "<br")
	assert.Equal(t, 2, strings.Count(result, "<p>"))
}

func TestRenderPost_Hashtags(t *testing.T) {
	result := RenderPost("Ship it.\n\n#leadership #remoteWork")

	assert.Contains(t, result, `<span class="hashtag">#leadership</span>`)
	assert.Contains(t, result, `<span class="hashtag">#remoteWork</span>`)
}

func TestRenderPost_SanitizesScript(t *testing.T) {
	result := RenderPost("hello <script>alert(1)</script> <span class=\"evil\" onclick=\"x()\">hi</span>")

	assert.NotContains(t, result, "<script>")
	assert.NotContains(t, result, "onclick")
	assert.NotContains(t, result, "evil")
}

func TestRenderPost_LinkAnchorsAreNotHashtags(t *testing.T) {
	result := RenderPost("[docs](https://example.com/page#section)")

	assert.NotContains(t, result, `class="hashtag"`)
	assert.Contains(t, result, `href="https://example.com/page#section"`)
}

func TestToPreviewViewModel(t *testing.T) {
	p := toPreviewViewModel("one two three")
	assert.Equal(t, 3, p.Words)
	assert.Equal(t, 13, p.Characters)
	assert.False(t, p.OverLimit)

	long := toPreviewViewModel(strings.Repeat("a", linkedInCharLimit+1))
	assert.True(t, long.OverLimit)
}

func TestPriceLabel(t *testing.T) {
	assert.Equal(t, "₹499", priceLabel("INR", 499))
	assert.Equal(t, "$999", priceLabel("USD", 999))
	assert.Equal(t, "JPY 499", priceLabel("JPY", 499))
	assert.Equal(t, "Free", priceLabel("INR", 0))
}
