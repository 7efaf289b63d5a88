package imageapi

import (
	"encoding/json"
	"net/http"

	"github.com/openai/openai-go"
)

type generateRequest struct {
	Prompt     string `json:"prompt"`
	N          int64  `json:"n"`
	Size       string `json:"size"`
	Background string `json:"background"`
	Quality    string `json:"quality"`
}

type generateResponse struct {
	Images []string `json:"images"`
}

// handleGenerate serves non-streaming image generation.
func (s *Service) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Prompt == "" {
		writeDetail(w, http.StatusBadRequest, "Missing 'prompt'")
		return
	}

	if req.N == 0 {
		req.N = 1
	}
	if req.Size == "" {
		req.Size = "1024x1024"
	}

	params := openai.ImageGenerateParams{
		Model:  openai.ImageModelGPTImage1,
		Prompt: req.Prompt,
		N:      openai.Int(req.N),
		Size:   openai.ImageGenerateParamsSize(req.Size),
	}
	if req.Background != "" {
		params.Background = openai.ImageGenerateParamsBackground(req.Background)
	}
	if req.Quality != "" {
		params.Quality = openai.ImageGenerateParamsQuality(req.Quality)
	}

	resp, err := s.client.Images.Generate(r.Context(), params)
	if err != nil {
		writeDetail(w, http.StatusBadGateway, err.Error())
		return
	}

	images := make([]string, 0, len(resp.Data))
	for _, item := range resp.Data {
		if item.B64JSON != "" {
			images = append(images, item.B64JSON)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(generateResponse{Images: images})
}
