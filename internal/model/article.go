package model

// Article categories. "limited" is stored and shown as a badge but does not
// gate access anywhere.
const (
	CategoryAll     = "all"
	CategoryLimited = "limited"
)

// Article is a pre-seeded, read-only content entry. There is no authoring
// flow; rows are owned externally.
type Article struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Content  string `json:"content"`
	Category string `json:"category"`
}
