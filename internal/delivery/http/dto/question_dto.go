package dto

type QuestionRequest struct {
	Question string `json:"question"`
}

type SourceNode struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

type QuestionResponse struct {
	DocumentID  int64        `json:"document_id"`
	Question    string       `json:"question"`
	Answer      string       `json:"answer"`
	SourceNodes []SourceNode `json:"source_nodes"`
}
