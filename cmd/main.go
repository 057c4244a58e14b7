package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"purifier-app/routine-service/internal/config"
	"purifier-app/routine-service/internal/handler"
	"purifier-app/routine-service/internal/models"
	"purifier-app/routine-service/internal/repository"
	"purifier-app/routine-service/internal/services"
	"purifier-app/routine-service/internal/utils"
	"purifier-app/routine-service/internal/utils/push"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ringsaturn/tzf"
	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	runOnce := flag.Bool("once", false, "выполнить полуночную рутину один раз и выйти")
	flag.Parse()

	baseCtx := context.Background()
	ctx, shutdownManager := utils.NewShutdownManager(baseCtx)
	shutdownManager.StartListening()

	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// Подключение к MongoDB
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Mongo connection failed:", err)
	}
	shutdownManager.Register(func(ctx context.Context) error {
		log.Println("[SHUTDOWN] Closing MongoDB connection...")
		return mongoClient.Disconnect(ctx)
	})

	db := mongoClient.Database("purifier_service")

	// Подключение к Redis
	rdb, err := utils.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	shutdownManager.Register(func(ctx context.Context) error {
		log.Println("[SHUTDOWN] Closing Redis connection...")
		return rdb.Close()
	})

	// Геокодер точка→таймзона
	finder, err := tzf.NewDefaultFinder()
	if err != nil {
		log.Fatal("Failed to init timezone finder:", err)
	}

	// Инициализация слоев
	bucketRepo := repository.NewBucketRepository(db)
	deviceRepo := repository.NewDeviceRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	resolver := services.NewTimezoneResolver(finder)

	var mailer services.EmailAlerter
	if cfg.SMTPHost != "" {
		mailer = services.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	}

	deviceService := services.NewDeviceService(deviceRepo, bucketRepo, resolver, rdb, mailer, cfg.AdminEmail)
	runner := services.NewMidnightRunner(bucketRepo, deviceService.ResetDailyStats)

	if *runOnce {
		summary, err := runner.Run(ctx)
		if err != nil {
			log.Fatalf("Routine run failed: %v", err)
		}
		printSummary(summary)
		os.Exit(0)
	}

	var fcm *push.FCMClient
	if cfg.FirebaseCredentials != "" {
		fcm, err = push.NewFCMClient(cfg.FirebaseCredentials)
		if err != nil {
			log.Fatal("Failed to init FCM client:", err)
		}
	}
	notificationService := services.NewNotificationService(notifRepo, deviceRepo, rdb, fcm)
	go notificationService.StartRedisSubscriber(ctx)

	// Планировщик дергает раннер раз в минуту; проход дешёвый —
	// O(числа таймзон), а не числа устройств.
	scheduler := cron.New()
	_, err = scheduler.AddFunc("* * * * *", func() {
		if _, err := runner.Run(ctx); err != nil {
			log.Printf("[CRON] Midnight routine failed: %v", err)
		}
	})
	if err != nil {
		log.Fatal("Failed to schedule midnight routine:", err)
	}
	scheduler.Start()
	shutdownManager.Register(func(ctx context.Context) error {
		log.Println("[SHUTDOWN] Stopping scheduler...")
		scheduler.Stop()
		return nil
	})

	// Создание обработчиков с инъекцией сервисов
	deviceHandler := handler.NewDeviceHandler(deviceService)
	routineHandler := handler.NewRoutineHandler(runner, bucketRepo, notificationService)

	// Инициализация маршрутизатора
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api")
	{
		api.POST("/devices", deviceHandler.Register)
		api.GET("/devices/:id", deviceHandler.GetByID)
		api.PUT("/devices/:id/location", deviceHandler.Relocate)
		api.DELETE("/devices/:id", deviceHandler.Deregister)

		api.GET("/routine/buckets", routineHandler.ListBuckets)
		api.GET("/routine/buckets/:tz", routineHandler.GetBucket)
		api.POST("/routine/run", routineHandler.RunNow)

		api.GET("/notifications", routineHandler.GetNotifications)
		api.PUT("/notifications/:id/read", routineHandler.MarkNotificationRead)
	}

	// Настройка HTTP сервера
	server := &http.Server{
		Addr:    cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Println("Routine service running on", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	shutdownManager.Register(func(ctx context.Context) error {
		log.Println("[SHUTDOWN] Shutting down HTTP server...")
		return server.Shutdown(ctx)
	})

	select {}
}

func printSummary(summary *models.RunSummary) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIMEZONE\tLOCAL TIME\tDEVICES\tIN WINDOW\tALREADY RAN\tACTION")
	for _, st := range summary.Statuses {
		local := "-"
		if !st.LocalTime.IsZero() {
			local = st.LocalTime.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%v\t%v\t%s\n",
			st.TimezoneID, local, st.DeviceCount, st.InWindow, st.AlreadyRan, st.Action)
	}
	w.Flush()

	fmt.Printf("\nBuckets checked: %d, executed: %d, devices processed: %d, failed: %d\n",
		summary.BucketsChecked, summary.BucketsExecuted, summary.DevicesProcessed, summary.DevicesFailed)
}
