package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"track-wise-service/internal/domain/entity"
	"track-wise-service/internal/domain/repository"
	"track-wise-service/pkg/logger"
)

// MscRepository fetches tracking information from the MSC website API
type MscRepository struct {
	logger  logger.Logger
	baseURL string
	client  *http.Client
}

// NewMscRepository creates a new MSC carrier repository
func NewMscRepository(baseURL string, timeout time.Duration, logger logger.Logger) repository.CarrierRepository {
	if baseURL == "" {
		baseURL = "https://www.msc.com"
	}
	return &MscRepository{
		logger:  logger.With("component", "msc"),
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type mscTrackingRequest struct {
	TrackingNumber string `json:"trackingNumber"`
	TrackingMode   string `json:"trackingMode"`
}

// GetTrackingInfo looks the container up by number. An unknown container
// comes back as a response with IsSuccess false.
func (r *MscRepository) GetTrackingInfo(ctx context.Context, containerNumber string) (*entity.TrackingResponse, error) {
	jsonData, err := json.Marshal(mscTrackingRequest{
		TrackingNumber: containerNumber,
		TrackingMode:   "0",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tracking request: %w", err)
	}

	url := fmt.Sprintf("%s/api/feature/tools/TrackingInfo", r.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	r.logger.Debug("Tracking info requested",
		"containerNumber", containerNumber,
		"status", resp.StatusCode,
		"elapsed", time.Since(start).String())

	if resp.StatusCode == http.StatusNotFound {
		return &entity.TrackingResponse{IsSuccess: false}, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", entity.ErrCarrierUnavailable, resp.StatusCode, string(body))
	}

	var tracking entity.TrackingResponse
	if err := json.NewDecoder(resp.Body).Decode(&tracking); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &tracking, nil
}
