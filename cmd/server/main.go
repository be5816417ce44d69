package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ChathuraAt1/kpi-platform-sub001/internal/config"
	"github.com/ChathuraAt1/kpi-platform-sub001/internal/domain/fiber/handler"
	"github.com/ChathuraAt1/kpi-platform-sub001/internal/middleware"
	"github.com/ChathuraAt1/kpi-platform-sub001/internal/model"
	"github.com/ChathuraAt1/kpi-platform-sub001/internal/queue"
	"github.com/ChathuraAt1/kpi-platform-sub001/internal/repository"
	"github.com/ChathuraAt1/kpi-platform-sub001/internal/service"
	"github.com/ChathuraAt1/kpi-platform-sub001/internal/usecase"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const healthSweepInterval = 15 * time.Minute

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}

	appConfig := config.LoadAppConfig()

	app := fiber.New(fiber.Config{
		AppName: appConfig.Name,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError

			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}

			return ctx.Status(code).JSON(fiber.Map{"error": message})
		},
	})
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: appConfig.Env != "production",
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.Env == "production"
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.RateLimiter(50, 1*time.Minute))

	db := ConnectDB(log)

	taskLogRepo := repository.NewTaskLogRepository(db)
	categoryRepo := repository.NewKpiCategoryRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	apiKeyRepo := repository.NewApiKeyRepository(db)

	registry := service.DefaultRegistry()
	llm := service.NewLLMClient(apiKeyRepo, registry, log)
	embedder := service.NewEmbeddingService(apiKeyRepo)
	keyHealth := service.NewKeyHealthService(apiKeyRepo, registry, log)

	taskLogUC := usecase.NewTaskLogUsecase(taskLogRepo, categoryRepo, llm, embedder, log)
	evaluationUC := usecase.NewEvaluationUsecase(taskLogRepo, categoryRepo, evaluationRepo, llm, log)

	rmq, err := queue.NewRabbitMQ(log)
	if err != nil {
		log.Fatal(err)
	}
	defer rmq.Close()

	err = rmq.ConsumeEvaluationJobs(func(job queue.EvaluationJob) {
		log.Infof("generating evaluation for user %s %d-%02d", job.UserID, job.Year, job.Month)
		_, err := evaluationUC.GenerateForUserMonth(context.Background(), job.UserID, job.Year, job.Month)
		switch {
		case errors.Is(err, usecase.ErrAlreadyGenerated):
			log.Infof("evaluation for user %s %d-%02d already exists", job.UserID, job.Year, job.Month)
		case err != nil:
			log.Errorf("evaluation generation for user %s %d-%02d failed: %v", job.UserID, job.Year, job.Month, err)
		}
	})
	if err != nil {
		log.Fatal(err)
	}

	// Periodic provider health sweep.
	go func() {
		ticker := time.NewTicker(healthSweepInterval)
		defer ticker.Stop()

		for range ticker.C {
			keyHealth.Sweep(context.Background(), false)
		}
	}()

	handler.NewTaskLogHandler(taskLogUC).RegisterRoutes(app)
	handler.NewEvaluationHandler(evaluationUC, rmq).RegisterRoutes(app)
	handler.NewKpiCategoryHandler(categoryRepo).RegisterRoutes(app)
	handler.NewApiKeyHandler(apiKeyRepo, keyHealth).RegisterRoutes(app)

	log.Infoln("Server running on ", appConfig.Port)
	if err := app.Listen(appConfig.Port); err != nil {
		log.Fatal(err)
	}
}

func ConnectDB(log *logrus.Logger) *gorm.DB {
	dbConfig := config.LoadDBConfig()
	appConfig := config.LoadAppConfig()

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		dbConfig.Host,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.Name,
		dbConfig.Port,
		dbConfig.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	pgDB, err := db.DB()
	if err != nil {
		log.Fatalf("Could not get database instance: %v", err)
	}
	if appConfig.Env != "production" {
		pgDB.SetMaxIdleConns(5)
		pgDB.SetMaxOpenConns(10)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		pgDB.SetMaxIdleConns(20)
		pgDB.SetMaxOpenConns(200)
		pgDB.SetConnMaxLifetime(time.Hour)
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Task{},
		&model.KpiCategory{},
		&model.TaskLog{},
		&model.MonthlyEvaluation{},
		&model.EvaluationAudit{},
		&model.ApiKey{},
	)
	if err != nil {
		log.Fatal("migration failed: ", err)
	}
	return db
}
