package dto

// ChatRequest 问答请求
type ChatRequest struct {
	Query string `json:"query" binding:"required"`
}

// ChatResponse 问答响应
type ChatResponse struct {
	Answer string `json:"answer"`
}
