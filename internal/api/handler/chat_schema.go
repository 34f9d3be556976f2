package handler

import "time"

type historyEntryRequest struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type chatRequest struct {
	Message string                `json:"message"`
	History []historyEntryRequest `json:"history"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

type turnResponse struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type historyResponse struct {
	Messages []turnResponse `json:"messages"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// errorResponse documents the error envelope rendered by the API error handler.
type errorResponse struct {
	Error string `json:"error"`
}
