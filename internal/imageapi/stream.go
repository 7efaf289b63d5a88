package imageapi

import (
	"encoding/json"
	"net/http"

	"github.com/apex/log"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"
)

type streamRequest struct {
	Prompt        string `json:"prompt"`
	PartialImages int64  `json:"partial_images"`
}

// streamEvent is one NDJSON line sent to the client.
type streamEvent struct {
	Type string `json:"type"`
	B64  string `json:"b64"`
}

// handleGenerateStream serves streaming image generation over NDJSON.
// Partial images arrive through the Responses API image_generation tool.
func (s *Service) handleGenerateStream(w http.ResponseWriter, r *http.Request) {
	var req streamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Prompt == "" {
		writeDetail(w, http.StatusBadRequest, "Missing 'prompt'")
		return
	}

	stream := s.client.Responses.NewStreaming(r.Context(), responses.ResponseNewParams{
		Model: "gpt-4.1",
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(req.Prompt),
		},
		Tools: []responses.ToolUnionParam{{
			OfImageGeneration: &responses.ToolImageGenerationParam{
				PartialImages: openai.Int(req.PartialImages),
			},
		}},
	})
	defer func() {
		_ = stream.Close()
	}()

	w.Header().Set("Content-Type", "application/x-ndjson")

	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)
	wrote := false

	emit := func(ev streamEvent) {
		_ = enc.Encode(ev)
		wrote = true
		if flusher != nil {
			flusher.Flush()
		}
	}

	for stream.Next() {
		event := stream.Current()

		switch event.Type {
		case "response.image_generation_call.partial_image":
			emit(streamEvent{Type: "partial", B64: event.PartialImageB64})

		case "response.completed":
			for _, item := range event.Response.Output {
				if item.Type == "image_generation_call" && item.Result != "" {
					emit(streamEvent{Type: "final", B64: item.Result})
				}
			}
		}
	}

	if err := stream.Err(); err != nil {
		if !wrote {
			writeDetail(w, http.StatusBadGateway, err.Error())
			return
		}
		// Headers already sent, nothing more to tell the client.
		log.WithError(err).Error("image stream aborted")
	}
}
