package embedding

// Provider defines the interface for generating text embeddings
type Provider interface {
	Generate(text string, taskType string) (*Response, error)
}

type RequestContentPart struct {
	Text string `json:"text"`
}

type RequestContent struct {
	Parts []RequestContentPart `json:"parts"`
}

type Request struct {
	Model    string         `json:"model"`
	Content  RequestContent `json:"content"`
	TaskType string         `json:"task_type,omitempty"`
}

type ResponseEmbedding struct {
	Values []float32 `json:"values"`
}

type Response struct {
	Embedding ResponseEmbedding `json:"embedding"`
}
