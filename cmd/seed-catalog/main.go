package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/certprep/certprep-backend/internal/config"
	"github.com/certprep/certprep-backend/internal/database"
	"github.com/certprep/certprep-backend/internal/logger"
	"github.com/certprep/certprep-backend/internal/model"
	"github.com/certprep/certprep-backend/internal/repository"
	"github.com/certprep/certprep-backend/internal/service"
)

// catalogFile is the JSON shape expected on disk: a list of exam
// definitions, each with its questions inline.
type catalogFile struct {
	Exams []model.CreateExamRequest `json:"exams"`
}

func main() {
	filePath := flag.String("file", "catalog.json", "path to the exam catalog JSON file")
	publish := flag.Bool("publish", false, "publish seeded exams and warm the payload cache")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	examRepo := repository.NewExamRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	examService := service.NewExamService(examRepo, questionRepo, rdb, log)

	raw, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatal().Err(err).Str("file", *filePath).Msg("Failed to read catalog file")
	}

	var catalog catalogFile
	if err := json.Unmarshal(raw, &catalog); err != nil {
		log.Fatal().Err(err).Msg("Invalid catalog JSON")
	}
	if len(catalog.Exams) == 0 {
		log.Fatal().Str("file", *filePath).Msg("Catalog contains no exams")
	}

	fmt.Printf("=== Seeding %d Exams ===\n", len(catalog.Exams))

	for i := range catalog.Exams {
		req := &catalog.Exams[i]

		exam, err := examService.Create(ctx, req)
		if err != nil {
			log.Fatal().Err(err).Str("title", req.Title).Msg("Failed to create exam")
		}
		fmt.Printf("Created exam '%s' (%d questions) with ID: %s\n", exam.Title, len(req.Questions), exam.ID)

		if *publish {
			if err := examService.Publish(ctx, exam.ID); err != nil {
				log.Fatal().Err(err).Str("exam_id", exam.ID.String()).Msg("Failed to publish exam")
			}
			fmt.Printf("Published exam %s\n", exam.ID)
		}
	}

	fmt.Println("Done.")
}
