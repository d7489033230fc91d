package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"freelance-app/internal/config"
	"freelance-app/internal/handler"
	"freelance-app/internal/repository"
	"freelance-app/internal/services"
	"freelance-app/internal/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	baseCtx := context.Background()
	ctx, shutdownManager := utils.NewShutdownManager(baseCtx)
	shutdownManager.StartListening()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	db := mongoClient.Database(cfg.MongoDB)

	shutdownManager.Register(func(ctx context.Context) error {
		log.Println("Closing MongoDB connection")
		return mongoClient.Disconnect(ctx)
	})

	redisClient, err := utils.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	shutdownManager.Register(func(ctx context.Context) error {
		log.Println("Closing Redis connection")
		return redisClient.Close()
	})

	jwtUtil := utils.NewJWTUtil(cfg.JWTSecret)
	mailer := services.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	events := services.NewRedisPublisher(redisClient.Raw())

	jobRepo := repository.NewJobRepository(db)
	ratingRepo := repository.NewRatingRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	jobService := services.NewJobService(jobRepo, redisClient, events, cfg)
	milestoneService := services.NewMilestoneService(jobRepo, redisClient, events)
	ratingService := services.NewRatingService(jobRepo, ratingRepo, events)
	notificationService := services.NewNotificationService(notificationRepo, redisClient.Raw(), mailer)

	notificationService.StartSubscriber(ctx)

	jobHandler := handler.NewJobHandler(jobService, ratingService)
	milestoneHandler := handler.NewMilestoneHandler(milestoneService)
	ratingHandler := handler.NewRatingHandler(ratingService)
	notificationHandler := handler.NewNotificationHandler(notificationService)

	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(utils.AuthMiddleware(jwtUtil))

	jobs := router.Group("/jobs")
	{
		jobs.GET("/", jobHandler.ListJobs)
		jobs.GET("/applied", utils.RequireRoles("freelancer"), jobHandler.AppliedJobs)
		jobs.GET("/employer", utils.RequireRoles("employer"), jobHandler.EmployerJobs)
		jobs.GET("/freelancer", utils.RequireRoles("freelancer"), jobHandler.FreelancerJobs)
		jobs.GET("/:id", jobHandler.GetJob)

		jobs.POST("/", utils.RequireRoles("employer"), jobHandler.CreateJob)
		jobs.POST("/:id/apply", utils.RequireRoles("freelancer"), jobHandler.ApplyToJob)
		jobs.PUT("/:id/select/:freelancerId", utils.RequireRoles("employer"), jobHandler.SelectFreelancer)
		jobs.POST("/:id/complete", utils.RequireRoles("employer"), jobHandler.CompleteJob)
		jobs.PUT("/:id/close", utils.RequireRoles("employer"), jobHandler.CloseJob)
		jobs.POST("/:id/rate", utils.RequireRoles("employer", "freelancer"), jobHandler.RateJob)

		jobs.POST("/:id/milestones", milestoneHandler.AddMilestone)
		jobs.PUT("/:id/milestones/:milestoneId", milestoneHandler.UpdateMilestone)
		jobs.DELETE("/:id/milestones/:milestoneId", milestoneHandler.DeleteMilestone)
		jobs.POST("/:id/milestones/:milestoneId/request-approval", utils.RequireRoles("freelancer"), milestoneHandler.RequestApproval)
		jobs.POST("/:id/milestones/:milestoneId/approve", utils.RequireRoles("employer"), milestoneHandler.ApproveMilestone)
		jobs.POST("/:id/milestones/:milestoneId/reject", utils.RequireRoles("employer"), milestoneHandler.RejectMilestone)

		admin := jobs.Group("/")
		admin.Use(utils.RequireRoles("admin"))
		{
			admin.GET("/all", jobHandler.ListAllJobs)
			admin.DELETE("/:id", jobHandler.DeleteJob)
		}
	}

	ratings := router.Group("/ratings")
	{
		ratings.GET("/:userId", ratingHandler.RatingsForUser)
		ratings.GET("/:userId/stats", ratingHandler.StatsForUser)
	}

	notifications := router.Group("/notifications")
	{
		notifications.GET("/", notificationHandler.List)
		notifications.PUT("/read-all", notificationHandler.MarkAllRead)
		notifications.PUT("/mark-read-multiple", notificationHandler.MarkReadMultiple)
		notifications.PUT("/:id", notificationHandler.MarkRead)
		notifications.PUT("/:id/archive", notificationHandler.Archive)
		notifications.DELETE("/multiple", notificationHandler.DeleteMultiple)
		notifications.DELETE("/:id", notificationHandler.Delete)
	}

	server := &http.Server{
		Addr:    cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("Freelance service running on %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	shutdownManager.Register(func(ctx context.Context) error {
		log.Println("Draining HTTP server")
		return server.Shutdown(ctx)
	})

	select {}
}
