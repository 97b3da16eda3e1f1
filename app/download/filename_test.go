package download

import (
	"strings"
	"testing"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		name               string
		url                string
		title              string
		contentDisposition string
		contentType        string
		expected           string
	}{
		{
			name:               "quoted content disposition",
			url:                "https://example.com/dl?id=1",
			contentDisposition: `attachment; filename="Show S01E01.torrent"`,
			expected:           "Show S01E01.torrent",
		},
		{
			name:               "extended content disposition",
			url:                "https://example.com/dl?id=1",
			contentDisposition: `attachment; filename*=UTF-8''caf%C3%A9.txt`,
			expected:           "café.txt",
		},
		{
			name:               "unquoted name with spaces",
			url:                "https://example.com/dl?id=1",
			contentDisposition: `attachment; filename=Show S01E01.torrent`,
			expected:           "Show S01E01.torrent",
		},
		{
			name:               "content disposition with path is reduced to base name",
			url:                "https://example.com/dl",
			contentDisposition: `attachment; filename="../../etc/passwd"`,
			expected:           "passwd",
		},
		{
			name:     "last url segment",
			url:      "https://example.com/files/episode%201.mp3",
			expected: "episode 1.mp3",
		},
		{
			name:     "last url segment with query gets url hash",
			url:      "https://example.com/files/episode%201.mp3?token=abc",
			expected: "episode 1-" + urlHash("https://example.com/files/episode%201.mp3?token=abc", 8) + ".mp3",
		},
		{
			name:        "title with content type extension",
			url:         "https://example.com/",
			title:       "<b>Weekly</b> Report",
			contentType: "application/pdf",
			expected:    "Weekly Report.pdf",
		},
		{
			name:     "title entities are unescaped",
			url:      "https://example.com/",
			title:    "Tom & Jerry",
			expected: "Tom & Jerry",
		},
		{
			name:     "title with separators",
			url:      "https://example.com/",
			title:    "AC/DC",
			expected: "DC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := fileName(tt.url, tt.title, tt.contentDisposition, tt.contentType)
			if result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestFileNameHashFallback(t *testing.T) {
	first := fileName("https://example.com/", "", "", "")
	if !strings.HasPrefix(first, "item-") || len(first) != len("item-")+12 {
		t.Errorf("Expected hash based name, got %q", first)
	}

	again := fileName("https://example.com/", "", "", "")
	if first != again {
		t.Errorf("Expected stable name, got %q and %q", first, again)
	}

	other := fileName("https://example.org/", "", "", "")
	if first == other {
		t.Error("Expected different URLs to produce different names")
	}
}

func TestFileNameQueryURLsDiffer(t *testing.T) {
	first := fileName("https://tracker.example/download.php?id=1", "", "", "")
	second := fileName("https://tracker.example/download.php?id=2", "", "", "")

	if first == second {
		t.Fatalf("Expected distinct names, both got %q", first)
	}
	if !strings.HasPrefix(first, "download-") || !strings.HasSuffix(first, ".php") {
		t.Errorf("Expected name derived from the path segment, got %q", first)
	}
	if again := fileName("https://tracker.example/download.php?id=1", "", "", ""); again != first {
		t.Errorf("Expected stable name, got %q and %q", first, again)
	}
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"plain.txt", "plain.txt"},
		{"  spaced.txt  ", "spaced.txt"},
		{"a\x00b\nc.txt", "abc.txt"},
		{`dir\file.txt`, "file.txt"},
		{"..", ""},
		{".", ""},
		{"", ""},
		{"café.txt", "café.txt"},
	}

	for _, tt := range tests {
		if result := cleanName(tt.input); result != tt.expected {
			t.Errorf("cleanName(%q): expected %q, got %q", tt.input, tt.expected, result)
		}
	}
}

func TestCleanNameTruncates(t *testing.T) {
	long := strings.Repeat("é", 300) + ".mkv"
	result := cleanName(long)

	if len(result) > maxNameLength {
		t.Errorf("Expected at most %d bytes, got %d", maxNameLength, len(result))
	}
	if !strings.HasSuffix(result, ".mkv") {
		t.Errorf("Expected extension to be kept, got %q", result)
	}
	if !strings.HasPrefix(result, "é") {
		t.Errorf("Expected valid UTF-8 prefix, got %q", result[:4])
	}
}
