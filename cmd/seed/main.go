// Command seed bulk-loads catalog items from a JSON file into the
// configured store. The file holds an array of {title, image_url} objects;
// each entry gets a fresh id and the default rating.
package main

import (
	"context"
	"flag"
	"os"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/okian/faceoff/internal/adapters/repository"
	"github.com/okian/faceoff/internal/config"
	"github.com/okian/faceoff/internal/domain/model"
	"github.com/okian/faceoff/pkg/logger"
)

type seedItem struct {
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
}

func main() {
	var path string
	flag.StringVar(&path, "f", "items.json", "path to the items JSON file")
	flag.Parse()

	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get().Named("seed")
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal(ctx, "failed to load config", logger.Error(err))
	}
	if cfg.DBDriver == "" {
		log.Fatal(ctx, "seeding requires a database backend; set db_driver and db_dsn")
	}

	store, err := repository.OpenSQLStore(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal(ctx, "failed to open store", logger.Error(err))
	}
	defer func() { _ = store.Close() }()

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatal(ctx, "failed to read seed file", logger.String("path", path), logger.Error(err))
	}
	var entries []seedItem
	if err := json.Unmarshal(raw, &entries); err != nil {
		log.Fatal(ctx, "failed to parse seed file", logger.String("path", path), logger.Error(err))
	}

	added := 0
	for _, e := range entries {
		if e.Title == "" {
			log.Warn(ctx, "skipping entry without title")
			continue
		}
		it := model.Item{
			ID:       uuid.NewString(),
			Title:    e.Title,
			ImageURL: e.ImageURL,
			Rating:   model.DefaultRating,
		}
		if err := store.AddItem(ctx, it); err != nil {
			log.Error(ctx, "failed to add item", logger.String("title", e.Title), logger.Error(err))
			continue
		}
		added++
	}

	log.Info(ctx, "seeding complete",
		logger.Int("added", added),
		logger.Int("total", len(entries)),
	)
}
