package domain

import "errors"

var (
	ErrNotPDF             = errors.New("please upload a PDF file")
	ErrNotImage           = errors.New("please upload a JPEG, PNG, WebP or GIF image")
	ErrFileTooLarge       = errors.New("file is too large")
	ErrResumeNotFound     = errors.New("resume not found")
	ErrAIRateLimited      = errors.New("rate limit exceeded")
	ErrAICreditsExhausted = errors.New("ai credits exhausted")
)
