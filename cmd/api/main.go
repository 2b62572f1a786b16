package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/trivia-game/internal/config"
	"github.com/yourusername/trivia-game/internal/handler"
	"github.com/yourusername/trivia-game/internal/handler/dto"
	"github.com/yourusername/trivia-game/internal/middleware"
	pgRepo "github.com/yourusername/trivia-game/internal/repository/postgres"
	redisRepo "github.com/yourusername/trivia-game/internal/repository/redis"
	"github.com/yourusername/trivia-game/internal/service"
	"github.com/yourusername/trivia-game/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	sessionRepo := pgRepo.NewSessionRepo(db)
	answerRepo := pgRepo.NewAnswerRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Правила игры из конфигурации
	settings := service.GameSettings{
		CategoryQuota:       cfg.Game.CategoryQuota(),
		WinThresholdPercent: cfg.Game.WinThresholdPercent,
		SessionCacheTTL:     time.Duration(cfg.Game.SessionCacheTTLMin) * time.Minute,
	}

	// Инициализируем сервисы
	userService := service.NewUserService(userRepo)
	questionService := service.NewQuestionService(questionRepo, sessionRepo)
	sessionService := service.NewSessionService(sessionRepo, answerRepo, userRepo, questionRepo, questionService, cacheRepo, settings)

	// Инициализируем обработчики
	userHandler := handler.NewUserHandler(userService)
	questionHandler := handler.NewQuestionHandler(questionService)
	sessionHandler := handler.NewSessionHandler(sessionService, dto.SessionRules{
		TotalQuestions:       cfg.Game.TotalQuestions(),
		QuestionsPerCategory: cfg.Game.QuestionsPerCategory,
		WinThresholdPercent:  cfg.Game.WinThresholdPercent,
	})

	// Контекст отмены для фоновых горутин
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Фоновое истечение просроченных сессий. Статус expired выставляется
	// только воркером, запросы чтения сессий его не меняют.
	expiryWorker := service.NewExpiryWorker(sessionService, time.Duration(cfg.Game.ExpirySweepSec)*time.Second)
	go expiryWorker.Run(ctx)

	// Инициализируем роутер Gin
	router := gin.Default()

	isProduction := gin.Mode() == gin.ReleaseMode

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	if isProduction {
		// Production: не доверять прокси-заголовкам
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		// Development: доверяем localhost
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:8000", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Healthcheck
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Пользователи
	users := router.Group("/users")
	{
		users.POST("", userHandler.CreateUser)

		userWithID := users.Group("/:id")
		userWithID.Use(middleware.ExtractUUIDParam("id", "userID"))
		{
			userWithID.GET("", userHandler.GetUser)
		}
	}

	// Банк вопросов (game master)
	questions := router.Group("/questions")
	{
		questions.POST("", questionHandler.CreateQuestion)
		questions.GET("", questionHandler.ListQuestions)

		questionWithID := questions.Group("/:id")
		questionWithID.Use(middleware.ExtractUUIDParam("id", "questionID"))
		{
			questionWithID.GET("", questionHandler.GetQuestion)
			questionWithID.PUT("", questionHandler.UpdateQuestion)
			questionWithID.DELETE("", questionHandler.DeleteQuestion)
		}
	}

	// Игровые сессии
	sessions := router.Group("/sessions")
	{
		sessions.POST("", sessionHandler.CreateSession)
		sessions.GET("", sessionHandler.ListSessions)
		sessions.GET("/export", sessionHandler.ExportSessions)

		sessionWithID := sessions.Group("/:id")
		sessionWithID.Use(middleware.ExtractUUIDParam("id", "sessionID"))
		{
			sessionWithID.GET("", sessionHandler.GetSession)
			sessionWithID.POST("/answer", sessionHandler.SubmitAnswer)
		}
	}

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %s", cfg.Server.Port)

	// После получения сигнала SIGINT или SIGTERM вызываем cancel() для завершения горутин
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	cancel()

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	// Контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server exited properly")
}
