package feed

import (
	"testing"
	"time"
)

func TestParseRSS2(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <description>Test Description</description>
    <language>en-us</language>
    <item>
      <title>  Show S01E01 1080p  </title>
      <link>https://example.com/item1.torrent</link>
      <guid>item-1</guid>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Show S01E02 720p</title>
      <link>https://example.com/item2.torrent</link>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	metadata, items, err := parser.Run([]byte(rssData))

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if metadata.Title != "Test Feed" {
		t.Errorf("Expected title 'Test Feed', got: %s", metadata.Title)
	}
	if metadata.Link != "https://example.com" {
		t.Errorf("Expected link 'https://example.com', got: %s", metadata.Link)
	}
	if metadata.Language != "en-us" {
		t.Errorf("Expected language 'en-us', got: %s", metadata.Language)
	}

	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got: %d", len(items))
	}

	first := items[0]
	if first.Title != "Show S01E01 1080p" {
		t.Errorf("Expected trimmed title, got: %q", first.Title)
	}
	if first.Link != "https://example.com/item1.torrent" {
		t.Errorf("Expected link 'https://example.com/item1.torrent', got: %s", first.Link)
	}
	if first.GUID != "item-1" {
		t.Errorf("Expected GUID 'item-1', got: %s", first.GUID)
	}
	if first.PublishedAt == nil {
		t.Fatal("Expected published date to be parsed")
	}
	expected := time.Date(2023, 7, 3, 10, 0, 0, 0, time.UTC)
	if !first.PublishedAt.Equal(expected) {
		t.Errorf("Expected published date %v, got: %v", expected, *first.PublishedAt)
	}

	// GUID falls back to the link
	if items[1].GUID != "https://example.com/item2.torrent" {
		t.Errorf("Expected GUID to fall back to link, got: %s", items[1].GUID)
	}
}

func TestParseAtom(t *testing.T) {
	atomData := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Feed</title>
  <link href="https://example.com/"/>
  <id>urn:uuid:feed</id>
  <updated>2023-07-03T12:00:00Z</updated>
  <entry>
    <title>Atom Entry</title>
    <link href="https://example.com/entry.zip"/>
    <id>urn:uuid:entry-1</id>
    <updated>2023-07-03T11:00:00Z</updated>
  </entry>
</feed>`

	parser := NewParser()
	metadata, items, err := parser.Run([]byte(atomData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if metadata.Title != "Atom Feed" {
		t.Errorf("Expected title 'Atom Feed', got: %s", metadata.Title)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got: %d", len(items))
	}
	if items[0].Link != "https://example.com/entry.zip" {
		t.Errorf("Expected link 'https://example.com/entry.zip', got: %s", items[0].Link)
	}
	if items[0].PublishedAt == nil {
		t.Error("Expected updated date to be used as published date")
	}
}

func TestParseEnclosure(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Podcast</title>
    <item>
      <title>Episode 1</title>
      <enclosure url="https://cdn.example.com/ep1.mp3" length="1234" type="audio/mpeg"/>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	_, items, err := parser.Run([]byte(rssData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got: %d", len(items))
	}

	item := items[0]
	if item.Link != "" {
		t.Errorf("Expected empty link, got: %s", item.Link)
	}
	if item.EnclosureURL != "https://cdn.example.com/ep1.mp3" {
		t.Errorf("Expected enclosure URL, got: %s", item.EnclosureURL)
	}
	if item.EnclosureType != "audio/mpeg" {
		t.Errorf("Expected enclosure type 'audio/mpeg', got: %s", item.EnclosureType)
	}
	if item.DownloadURL() != "https://cdn.example.com/ep1.mp3" {
		t.Errorf("Expected download URL to fall back to enclosure, got: %s", item.DownloadURL())
	}
}

func TestParseItemWithoutTitle(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Feed</title>
    <item>
      <link>https://example.com/untitled</link>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	_, items, err := parser.Run([]byte(rssData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected untitled item to be kept for the caller to skip, got %d items", len(items))
	}
	if items[0].Title != "" {
		t.Errorf("Expected empty title, got: %q", items[0].Title)
	}
}

func TestParseInvalidDocument(t *testing.T) {
	parser := NewParser()
	_, _, err := parser.Run([]byte("this is not a feed"))
	if err == nil {
		t.Error("Expected error for invalid document")
	}
}

func TestItemDownloadURLPrefersLink(t *testing.T) {
	item := Item{Link: "https://example.com/a", EnclosureURL: "https://example.com/b"}
	if item.DownloadURL() != "https://example.com/a" {
		t.Errorf("Expected link to take precedence, got: %s", item.DownloadURL())
	}
}
