package web

import (
	"bytes"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	mdRenderer    goldmark.Markdown
	postRenderer  goldmark.Markdown
	htmlSanitizer *bluemonday.Policy
	hashtagRE     = regexp.MustCompile(`(^|[\s>])#([\p{L}\p{N}_]+)`)
)

func init() {
	mdRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	// Generated posts rely on single line breaks, so they are kept as <br>.
	postRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe(), html.WithHardWraps()),
	)

	htmlSanitizer = bluemonday.UGCPolicy()
	htmlSanitizer.AllowAttrs("class").Matching(regexp.MustCompile(`^hashtag$`)).OnElements("span")
}

// RenderMarkdown converts a markdown string to sanitized HTML.
// Returns empty string for empty input.
func RenderMarkdown(src string) string {
	return render(mdRenderer, src)
}

// RenderPost converts a generated post to sanitized HTML, keeping single line
// breaks and wrapping hashtags in <span class="hashtag">.
func RenderPost(src string) string {
	if src == "" {
		return ""
	}
	out := hashtagRE.ReplaceAllString(render(postRenderer, src), `$1<span class="hashtag">#$2</span>`)
	return htmlSanitizer.Sanitize(out)
}

func render(md goldmark.Markdown, src string) string {
	if src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return htmlSanitizer.Sanitize(src)
	}

	return htmlSanitizer.Sanitize(buf.String())
}
