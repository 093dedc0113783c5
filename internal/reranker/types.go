package reranker

// candidate passed to the cross-encoder
type Document struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// reranked hit, most relevant first
type Result struct {
	ID    string
	Score float64
}

type Config struct {
	APIKey  string
	Model   string // e.g., "bge-reranker-v2-m3"
	BaseURL string // defaults to the hosted inference API
}

type rerankRequest struct {
	Model           string            `json:"model"`
	Query           string            `json:"query"`
	Documents       []Document        `json:"documents"`
	TopN            int               `json:"top_n"`
	ReturnDocuments bool              `json:"return_documents"`
	RankFields      []string          `json:"rank_fields"`
	Parameters      map[string]string `json:"parameters,omitempty"`
}

type rerankResponse struct {
	Model string `json:"model"`
	Data  []struct {
		Index int     `json:"index"`
		Score float64 `json:"score"`
	} `json:"data"`
}
