package dto

type GenerateImageRequest struct {
	Prompt string `json:"prompt" validate:"required"`
	Size   string `json:"size,omitempty" validate:"omitempty,oneof=1024x1024 1792x1024 1024x1792"`
}

type GenerateImageResponse struct {
	URL string `json:"url"`
}
