package download

import (
	"crypto/sha256"
	"encoding/hex"
	"html"
	"mime"
	"net/url"
	"path"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

const maxNameLength = 200

var titlePolicy = bluemonday.StrictPolicy()

// fileName picks the on-disk name for a downloaded item. Candidates are tried in
// order: the Content-Disposition header, the last URL path segment, the item
// title with an extension derived from the content type, and finally a stable
// hash of the URL. When the URL carries a query string the path segment is not
// unique per item (download.php?id=N), so it gets a short URL hash appended.
func fileName(rawURL, title, contentDisposition, contentType string) string {
	candidates := []func() string{
		func() string { return fromContentDisposition(contentDisposition) },
		func() string { return fromURL(rawURL) },
		func() string { return fromTitle(title, contentType) },
	}

	for _, candidate := range candidates {
		if name := cleanName(candidate()); name != "" {
			return name
		}
	}

	return "item-" + urlHash(rawURL, 12)
}

func urlHash(rawURL string, n int) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:])[:n]
}

func fromContentDisposition(header string) string {
	if header == "" {
		return ""
	}

	// ParseMediaType decodes RFC 2231 filename* into "filename"
	if _, params, err := mime.ParseMediaType(header); err == nil {
		if name := params["filename"]; name != "" {
			return name
		}
	}

	// Servers frequently send unquoted names with spaces, which the strict parser rejects
	lower := strings.ToLower(header)
	idx := strings.Index(lower, "filename=")
	if idx < 0 {
		return ""
	}
	value := header[idx+len("filename="):]
	if end := strings.Index(value, ";"); end >= 0 {
		value = value[:end]
	}
	return strings.Trim(strings.TrimSpace(value), `"'`)
}

func fromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	segment := path.Base(parsed.Path)
	if segment == "." || segment == "/" {
		return ""
	}
	if parsed.RawQuery == "" {
		return segment
	}

	ext := path.Ext(segment)
	return strings.TrimSuffix(segment, ext) + "-" + urlHash(rawURL, 8) + ext
}

func fromTitle(title, contentType string) string {
	// StrictPolicy strips markup but leaves entities escaped
	name := strings.TrimSpace(html.UnescapeString(titlePolicy.Sanitize(title)))
	if name == "" {
		return ""
	}

	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
			name += exts[0]
		}
	}
	return name
}

// cleanName reduces a candidate to a single NFC-normalized path element with no
// separators or control characters. It returns "" for names that cannot be used.
func cleanName(name string) string {
	name = norm.NFC.String(name)

	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)

	if name == "" || name == "." || name == ".." {
		return ""
	}

	if len(name) > maxNameLength {
		ext := path.Ext(name)
		if len(ext) > 16 {
			ext = ""
		}
		name = truncateUTF8(name[:len(name)-len(ext)], maxNameLength-len(ext)) + ext
	}
	return name
}

func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
