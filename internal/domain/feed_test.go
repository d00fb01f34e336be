package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractAlertLinks(t *testing.T) {
	t.Run("rss links filtered to cap candidates", func(t *testing.T) {
		feed := `<rss><channel>
			<link>https://alerts.example.nz/cap/123</link>
			<link>https://alerts.example.nz/other</link>
		</channel></rss>`

		links := ExtractAlertLinks(feed)
		assert.Equal(t, []string{"https://alerts.example.nz/cap/123"}, links)
	})

	t.Run("atom href links", func(t *testing.T) {
		feed := `<feed>
			<link rel="alternate" type="application/cap+xml" href="https://alerts.example.nz/cap/9"/>
			<link rel="self" href="https://alerts.example.nz/feed"/>
		</feed>`

		links := ExtractAlertLinks(feed)
		assert.Equal(t, []string{"https://alerts.example.nz/cap/9"}, links)
	})

	t.Run("alert substring qualifies", func(t *testing.T) {
		feed := `<link>https://example.nz/warnings/alert-42.xml</link>`
		assert.Equal(t, []string{"https://example.nz/warnings/alert-42.xml"}, ExtractAlertLinks(feed))
	})

	t.Run("duplicates across rss and atom scans are removed", func(t *testing.T) {
		feed := `<link>https://x.nz/cap/1</link>` +
			`<link href="https://x.nz/cap/1"/>` +
			`<link href="https://x.nz/cap/2"/>`

		links := ExtractAlertLinks(feed)
		assert.Equal(t, []string{"https://x.nz/cap/1", "https://x.nz/cap/2"}, links)
	})

	t.Run("first-seen order preserved", func(t *testing.T) {
		feed := `<link>https://x.nz/cap/b</link><link>https://x.nz/cap/a</link>`
		assert.Equal(t, []string{"https://x.nz/cap/b", "https://x.nz/cap/a"}, ExtractAlertLinks(feed))
	})

	t.Run("no matches is an empty result, not an error", func(t *testing.T) {
		assert.Empty(t, ExtractAlertLinks("<rss><channel></channel></rss>"))
		assert.Empty(t, ExtractAlertLinks(""))
	})

	t.Run("pathological link content is bounded", func(t *testing.T) {
		huge := "<link>" + strings.Repeat("a", 5000) + "/cap/1</link>"
		assert.Empty(t, ExtractAlertLinks(huge), "over-long matches must not be captured")
	})
}
