package util

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryUploader загружает изображения товаров в Cloudinary.
// Аккаунт и upload preset фиксируются конфигурацией при старте сервиса.
type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	preset string
	folder string
}

func NewCloudinaryUploader(cloudName, apiKey, apiSecret, uploadPreset string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to init cloudinary: %w", err)
	}

	return &CloudinaryUploader{
		cld:    cld,
		preset: uploadPreset,
		folder: "pinemarket/products",
	}, nil
}

// Upload отправляет файл в Cloudinary и возвращает постоянный https URL
func (u *CloudinaryUploader) Upload(ctx context.Context, file io.Reader, filename string) (string, error) {
	resp, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		UploadPreset: u.preset,
		Folder:       u.folder,
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload failed: %w", err)
	}
	if resp.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload failed: %s", resp.Error.Message)
	}

	return resp.SecureURL, nil
}
