package feed

// Meta is the feed-level metadata supplied by the caller. It is passed
// through to the document as-is, never derived from content.
type Meta struct {
	Title       string
	Description string
	SiteURL     string
}
