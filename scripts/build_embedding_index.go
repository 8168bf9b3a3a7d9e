// Command build_embedding_index embeds every sightseeing place with the
// Gemini API and writes the flat index the semantic fallback searches at
// runtime. Run it whenever the place catalog or the embedding model changes:
//
//	go run ./scripts -model text-embedding-004
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"google.golang.org/genai"

	"github.com/gorodgid/go-route-planner/config"
	"github.com/gorodgid/go-route-planner/internal/types"
)

var model = flag.String("model", "text-embedding-004", "embedding model name")

// embeddingIndex mirrors the file layout internal/semantic reads.
type embeddingIndex struct {
	Model     string      `json:"model"`
	Dimension int         `json:"dimension"`
	PlaceIDs  []int       `json:"place_ids"`
	Vectors   [][]float32 `json:"vectors"`
}

func main() {
	flag.Parse()
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Fatalf("Failed to create gemini client: %v", err)
	}

	// The fallback searches sightseeing places only; food venues reach a
	// route through the food pool, never through the index.
	places, err := loadPlaces(cfg.DataPath(cfg.Data.Places))
	if err != nil {
		log.Fatalf("Failed to load places: %v", err)
	}
	if len(places) == 0 {
		log.Fatal("No places loaded, nothing to embed")
	}

	idx := embeddingIndex{Model: *model}
	for _, place := range places {
		vec, err := embedPlace(ctx, client, *model, place)
		if err != nil {
			log.Fatalf("Failed to embed place %d (%s): %v", place.ID, place.Title, err)
		}
		if idx.Dimension == 0 {
			idx.Dimension = len(vec)
		}
		if len(vec) != idx.Dimension {
			log.Fatalf("Model returned inconsistent dimensions: got %d, want %d", len(vec), idx.Dimension)
		}
		idx.PlaceIDs = append(idx.PlaceIDs, place.ID)
		idx.Vectors = append(idx.Vectors, vec)
		logger.Info("embedded place", slog.Int("id", place.ID), slog.String("title", place.Title))
	}

	out := cfg.DataPath(cfg.Data.EmbeddingIndex)
	data, err := json.Marshal(idx)
	if err != nil {
		log.Fatalf("Failed to marshal index: %v", err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		log.Fatalf("Failed to write index: %v", err)
	}
	logger.Info("embedding index written",
		slog.String("path", out),
		slog.String("model", idx.Model),
		slog.Int("dimension", idx.Dimension),
		slog.Int("vectors", len(idx.Vectors)))
}

func loadPlaces(path string) ([]types.Place, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var places []types.Place
	if err := json.Unmarshal(data, &places); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return places, nil
}

// embedPlace embeds the displayable text of a place as a retrieval document,
// the counterpart of the RETRIEVAL_QUERY encoding used for live queries.
func embedPlace(ctx context.Context, client *genai.Client, model string, place types.Place) ([]float32, error) {
	text := strings.TrimSpace(place.Title + ". " + place.Description)
	resp, err := client.Models.EmbedContent(ctx, model, genai.Text(text), &genai.EmbedContentConfig{
		TaskType: "RETRIEVAL_DOCUMENT",
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("empty embedding in response")
	}
	return resp.Embeddings[0].Values, nil
}
