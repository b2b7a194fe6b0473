package service

import (
	"context"

	"minima-be/internal/apperror"
	"minima-be/internal/pkg/logger"
	"minima-be/pkg/imagegen"
)

type IImageService interface {
	Generate(ctx context.Context, prompt, size string) (string, error)
}

type imageService struct {
	client *imagegen.Client
	logger logger.ILogger
}

func NewImageService(client *imagegen.Client, log logger.ILogger) IImageService {
	return &imageService{client: client, logger: log}
}

func (s *imageService) Generate(ctx context.Context, prompt, size string) (string, error) {
	url, err := s.client.Generate(ctx, prompt, size)
	if err != nil {
		s.logger.Error("image", "image generation failed", map[string]interface{}{"error": err.Error()})
		return "", apperror.Upstreamf("generate image")
	}
	return url, nil
}
