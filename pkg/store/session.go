package store

// Document represents a generic retrieved-content structure for the RAG layer
type Document struct {
	ID       string                 `json:"id"`
	Title    string                 `json:"title"`
	Content  string                 `json:"content"`
	Score    float32                `json:"score"`
	Metadata map[string]interface{} `json:"metadata"`
}

// Session represents the active conversation state in memory
type Session struct {
	ID     string `json:"id"` // ChatSessionID
	UserID string `json:"user_id"`
	View   string `json:"view"` // Last UI view the client reported
	Mode   string `json:"mode"` // Last resolved operating mode

	// Symbols discussed so far, most recent last. Lets comparison requests
	// like "bandingkan dengan yang lain" recover a pairing candidate.
	RecentSymbols []string `json:"recent_symbols"`

	// Metadata for last interaction
	LastQuery string `json:"last_query"`
}
