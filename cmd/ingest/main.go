package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"poetic-camera-be/internal/config"
	"poetic-camera-be/internal/entity"
	"poetic-camera-be/internal/repository/unitofwork"
	"poetic-camera-be/internal/service"
	"poetic-camera-be/pkg/database"
	"poetic-camera-be/pkg/embedding"
	"poetic-camera-be/pkg/embedding/jina"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

const batchSize = 50

// poemRecord matches one entry of the curated corpus file.
type poemRecord struct {
	Id       string                 `json:"id"`
	Title    string                 `json:"title"`
	Text     string                 `json:"text"`
	Status   string                 `json:"status"`
	Metadata map[string]interface{} `json:"metadata"`
}

func main() {
	filePath := flag.String("file", "", "path to a JSON array of poems")
	namespace := flag.String("namespace", "", "corpus namespace to load into (e.g. emily_dickinson)")
	replace := flag.Bool("replace", false, "delete the namespace before loading")
	flag.Parse()

	if *filePath == "" || *namespace == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Error: Failed to connect to database: %v", err)
	}
	uowFactory := unitofwork.NewRepositoryFactory(db)

	var provider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "jina" {
		provider = jina.NewJinaProvider(cfg.Keys.Jina)
	} else {
		provider = embedding.NewGeminiProvider(cfg.Keys.Gemini)
	}

	raw, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatalf("Error: Failed to read %s: %v", *filePath, err)
	}

	var poems []poemRecord
	if err := json.Unmarshal(raw, &poems); err != nil {
		log.Fatalf("Error: Failed to parse %s: %v", *filePath, err)
	}

	ctx := context.Background()
	uow := uowFactory.NewUnitOfWork(ctx)

	color.Cyan("📚 Loading %d poems into namespace %q\n", len(poems), *namespace)

	if *replace {
		color.Yellow("Deleting existing namespace %q...", *namespace)
		if err := uow.PoemEmbeddingRepository().DeleteByNamespace(ctx, *namespace); err != nil {
			log.Fatalf("Error: Failed to delete namespace: %v", err)
		}
	}

	var batch []*entity.PoemEmbedding
	loaded, skipped := 0, 0

	for i, poem := range poems {
		if poem.Status == "skipped" || poem.Text == "" {
			skipped++
			continue
		}

		semantic := service.BuildSemanticString(poem.Title, poem.Text, poem.Metadata)

		res, err := provider.Generate(semantic, "RETRIEVAL_DOCUMENT")
		if err != nil {
			color.Red("Failed to embed poem %d (%s): %v", i, poem.Title, err)
			skipped++
			continue
		}

		id := uuid.New()
		if parsed, err := uuid.Parse(poem.Id); err == nil {
			id = parsed
		}

		batch = append(batch, &entity.PoemEmbedding{
			Id:             id,
			Title:          poem.Title,
			Document:       poem.Text,
			SemanticString: semantic,
			Namespace:      *namespace,
			Metadata:       poem.Metadata,
			EmbeddingValue: res.Embedding.Values,
			CreatedAt:      time.Now(),
		})

		if len(batch) >= batchSize {
			if err := flushBatch(ctx, uow, batch); err != nil {
				log.Fatalf("Error: Failed to store batch: %v", err)
			}
			loaded += len(batch)
			color.Green("Upserted %d/%d", loaded, len(poems))
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := flushBatch(ctx, uow, batch); err != nil {
			log.Fatalf("Error: Failed to store final batch: %v", err)
		}
		loaded += len(batch)
	}

	color.Green("✅ Done: %d loaded, %d skipped", loaded, skipped)
	fmt.Println()
}

func flushBatch(ctx context.Context, uow unitofwork.UnitOfWork, batch []*entity.PoemEmbedding) error {
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	if err := uow.PoemEmbeddingRepository().CreateBatch(ctx, batch); err != nil {
		uow.Rollback()
		return err
	}
	return uow.Commit()
}
