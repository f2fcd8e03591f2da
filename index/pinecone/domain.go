package pinecone

type queryResponse struct {
	Matches []matchResult `json:"matches"`
}

type matchResult struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata"`
}

type fetchResponse struct {
	Vectors map[string]vectorResult `json:"vectors"`
}

type vectorResult struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata"`
}
