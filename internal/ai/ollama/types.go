package ollama

import "github.com/spigell/jobapply/internal/ai"

// Field order and names below are the wire contract; do not add fields.

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response      *string `json:"response"`
	Model         string  `json:"model"`
	TotalDuration int64   `json:"total_duration"`
	EvalCount     int     `json:"eval_count"`
}

type chatRequest struct {
	Model    string       `json:"model"`
	Messages []ai.Message `json:"messages"`
	Stream   bool         `json:"stream"`
	Options  chatOptions  `json:"options"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
}

type chatResponse struct {
	Message *struct {
		Content *string `json:"content"`
	} `json:"message"`
}

type tagsResponse struct {
	Models *[]struct {
		Name string `json:"name"`
	} `json:"models"`
}
