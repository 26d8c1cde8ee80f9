// Package imagehost uploads rendered charts to a public image host so they
// can be referenced from chat messages.
package imagehost

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/imroc/req/v3"
	log "github.com/sirupsen/logrus"
)

// DefaultUploadURL is the ImageKit upload endpoint.
const DefaultUploadURL = "https://upload.imagekit.io/api/v1/files/upload"

// Uploader stores an image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
}

// ImageKit uploads files with the ImageKit REST API.
type ImageKit struct {
	PrivateKey string
	Folder     string
	UploadURL  string
	client     *req.Client
}

type uploadResult struct {
	FileID string `json:"fileId"`
	Name   string `json:"name"`
	URL    string `json:"url"`
}

type uploadError struct {
	Message string `json:"message"`
}

// NewImageKit creates an uploader with optional proxy support.
func NewImageKit(privateKey, folder, proxyURL string) *ImageKit {
	c := req.C().SetTimeout(30 * time.Second)
	if proxyURL != "" {
		c.SetProxyURL(proxyURL)
	}
	if folder == "" {
		folder = "/"
	}
	return &ImageKit{
		PrivateKey: privateKey,
		Folder:     folder,
		UploadURL:  DefaultUploadURL,
		client:     c,
	}
}

// Upload sends data as a multipart upload and returns the hosted URL.
func (k *ImageKit) Upload(ctx context.Context, name string, data []byte) (string, error) {
	if k.PrivateKey == "" {
		return "", errors.New("imagekit private key not configured")
	}

	var ok uploadResult
	var failed uploadError
	resp, err := k.client.R().
		SetContext(ctx).
		SetBasicAuth(k.PrivateKey, "").
		SetFileBytes("file", name, data).
		SetFormData(map[string]string{
			"fileName":          name,
			"folder":            k.Folder,
			"useUniqueFileName": "false",
		}).
		SetSuccessResult(&ok).
		SetErrorResult(&failed).
		Post(k.UploadURL)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	if !resp.IsSuccessState() {
		return "", fmt.Errorf("upload %s: status %d: %s", name, resp.StatusCode, failed.Message)
	}
	if ok.URL == "" {
		return "", fmt.Errorf("upload %s: response has no url", name)
	}

	log.WithFields(log.Fields{"file": ok.Name, "id": ok.FileID}).Debug("uploaded image")
	return ok.URL, nil
}

// ChartFileName returns a unique name for a trend chart taken at t.
func ChartFileName(t time.Time) string {
	return fmt.Sprintf("oil_price_trend_%s_%s.png", t.Format("20060102_150405"), uuid.NewString()[:8])
}
