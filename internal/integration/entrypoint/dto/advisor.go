package dto

// AskQuestionRequest represents a question for the financial advisor.
type AskQuestionRequest struct {
	Question string `json:"question"`
}

// AskQuestionResponse carries the advisor's answer.
type AskQuestionResponse struct {
	Answer string `json:"answer"`
}
