package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/TejPotu/case-twin/internal/adapters/search"
	"github.com/TejPotu/case-twin/internal/domain/entities"
	"github.com/TejPotu/case-twin/internal/infrastructure/clients/medsiglip"
	"github.com/TejPotu/case-twin/internal/infrastructure/clients/typesense"
	"github.com/TejPotu/case-twin/pkg/config"
)

// caseRecord is one line of the JSONL dataset. Records either carry a
// precomputed embedding or an image path relative to the dataset directory.
type caseRecord struct {
	CaseID     string    `json:"case_id"`
	Diagnosis  string    `json:"diagnosis"`
	OneLiner   string    `json:"one_liner"`
	Modality   string    `json:"modality"`
	BodyRegion string    `json:"body_region"`
	AgeYears   int       `json:"age_years"`
	Sex        string    `json:"sex"`
	ImagePath  string    `json:"image_path"`
	ImageURL   string    `json:"image_url"`
	Tags       []string  `json:"tags"`
	Embedding  []float32 `json:"embedding"`
}

func main() {
	var dataset string
	var reset bool
	var intervalFlag string
	flag.StringVar(&dataset, "dataset", "", "path to the JSONL case dataset")
	flag.BoolVar(&reset, "reset", false, "delete existing Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	if dataset == "" {
		dataset = strings.TrimSpace(os.Getenv("CASE_DATASET"))
	}
	if dataset == "" {
		log.Fatal("No dataset provided; set -dataset or CASE_DATASET")
	}

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	var err error
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatalf("Invalid interval %q: %v", intervalValue, err)
		}
		if interval <= 0 {
			log.Fatalf("Interval must be greater than zero")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, dataset, reset); err != nil {
			log.Printf("Reindex failed: %v", err)
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Printf("Reindex complete. Next run in %s.", interval)

		select {
		case <-ctx.Done():
			log.Println("Reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, dataset string, reset bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}

	if reset || os.Getenv("RESET_TYPESENSE") == "true" {
		log.Println("Deleting cases collection before reindex")
		_, err := tsClient.Client().Collection(tsClient.Collection()).Delete(ctx)
		if err != nil {
			log.Printf("Warning: failed to delete collection: %v", err)
		}
	}

	adapter := search.NewTypesenseAdapter(tsClient)
	if err := adapter.InitSchema(ctx); err != nil {
		return err
	}

	// The embedding client is only needed for records without a precomputed
	// embedding, so its absence is not fatal up front.
	embedder, err := medsiglip.NewClient(&cfg.HuggingFace)
	if err != nil {
		log.Printf("Warning: embedding client unavailable, records without embeddings will be skipped: %v", err)
		embedder = nil
	}

	file, err := os.Open(dataset)
	if err != nil {
		return fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	datasetDir := filepath.Dir(dataset)

	indexed := 0
	skipped := 0
	lineNo := 0

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var record caseRecord
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			log.Printf("Skipping line %d: invalid JSON: %v", lineNo, err)
			skipped++
			continue
		}
		if record.CaseID == "" {
			log.Printf("Skipping line %d: missing case_id", lineNo)
			skipped++
			continue
		}

		embedding := record.Embedding
		if len(embedding) == 0 {
			embedding, err = embedRecord(ctx, embedder, datasetDir, &record)
			if err != nil {
				log.Printf("Skipping case %s: %v", record.CaseID, err)
				skipped++
				continue
			}
		}

		doc := &entities.CaseDocument{
			ID:               record.CaseID,
			CaseID:           record.CaseID,
			DiagnosisPrimary: record.Diagnosis,
			OneLiner:         record.OneLiner,
			Modality:         record.Modality,
			BodyRegion:       record.BodyRegion,
			AgeYears:         record.AgeYears,
			Sex:              record.Sex,
			ImageURL:         record.ImageURL,
			Tags:             record.Tags,
			Embedding:        embedding,
			CreatedAt:        time.Now().Unix(),
		}

		if err := adapter.Index(ctx, doc); err != nil {
			log.Printf("Failed to index case %s: %v", record.CaseID, err)
			skipped++
		} else {
			indexed++
			log.Printf("Indexed %s (%s)", record.CaseID, record.Diagnosis)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read dataset: %w", err)
	}

	log.Printf("Indexing complete: %d indexed, %d skipped.", indexed, skipped)
	return nil
}

func embedRecord(ctx context.Context, embedder *medsiglip.Client, datasetDir string, record *caseRecord) ([]float32, error) {
	if embedder == nil {
		return nil, fmt.Errorf("no embedding and no embedding client")
	}
	if record.ImagePath == "" {
		return nil, fmt.Errorf("no embedding and no image_path")
	}

	imagePath := record.ImagePath
	if !filepath.IsAbs(imagePath) {
		imagePath = filepath.Join(datasetDir, imagePath)
	}

	image, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	embedding, err := embedder.EmbedImage(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("failed to embed image: %w", err)
	}
	return embedding, nil
}
