package message

// Bookmark marks a point in transactional history.
type Bookmark struct {
	value string
}

func NewBookmark(v string) Bookmark {
	return Bookmark{value: v}
}

// Value returns the opaque token.
func (b Bookmark) Value() string {
	return b.value
}

// Bookmarks wraps raw tokens, skipping empty ones.
func Bookmarks(values ...string) []Bookmark {
	out := make([]Bookmark, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		out = append(out, Bookmark{value: v})
	}
	return out
}

func bookmarkValues(in []Bookmark) []string {
	out := make([]string, len(in))
	for i, b := range in {
		out[i] = b.Value()
	}
	return out
}
