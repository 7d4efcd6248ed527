package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aura_server/config"
	"aura_server/routes"
	"aura_server/services"
	"aura_server/socket"

	"github.com/go-co-op/gocron/v2"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func newStore(ctx context.Context, cfg *config.Config) services.Store {
	if cfg.StoreBackend == config.BackendMemory {
		log.Println("⚠️  Using the in-memory store; data is lost on restart")
		return services.NewMemoryStore()
	}

	log.Println("Initializing DynamoDB client...")
	client, err := services.InitializeDynamoDBClient(ctx, cfg.AWSRegion)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	store := services.NewDynamoService(client, services.TableNames{
		Users:    cfg.UsersTable,
		Chats:    cfg.ChatsTable,
		Messages: cfg.MessagesTable,
	})
	store.MaxAttempts = cfg.MatchMaxAttempts
	log.Println("DynamoDB client initialized.")
	return store
}

func main() {
	cfg := config.Load()
	ctx := context.Background()

	store := newStore(ctx, cfg)
	retry := services.DefaultRetryPolicy
	retry.MaxAttempts = cfg.MatchMaxAttempts

	// Initialize Services
	hub := services.NewHub()
	userProfileService := &services.UserProfileService{Store: store, Retry: retry}
	feedService := &services.FeedService{Store: store}
	swipeService := services.NewSwipeService(store, hub, retry)
	chatService := services.NewChatService(store, hub)
	batchService := services.NewBatchMatchService(store)

	presigner, err := services.NewS3Presigner(ctx, cfg.AWSRegion)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	mediaService := services.NewMediaService(presigner, store, cfg.S3Bucket)

	var sched gocron.Scheduler
	if cfg.BatchMatchInterval > 0 {
		if sched, err = batchService.StartBatchScheduler(cfg.BatchMatchInterval); err != nil {
			log.Fatalf("❌ %v", err)
		}
	}

	socketServer := socket.NewSocketServer(socket.NewBridge(chatService))
	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Printf("❌ Socket server stopped: %v", err)
		}
	}()

	// Initialize the router
	r := mux.NewRouter()
	routes.RegisterRoutes(r)
	r.Handle("/socket.io/", socketServer)

	api := routes.NewAPIRouter(r)
	routes.RegisterUserProfileRoutes(api, userProfileService)
	routes.RegisterActionRoutes(api, swipeService)
	routes.RegisterMatchRoutes(api, feedService, swipeService, batchService)
	routes.RegisterChatRoutes(api, chatService)
	routes.RegisterS3Routes(api, mediaService)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-User-ID"},
		AllowCredentials: true,
	}).Handler(r)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: corsHandler}
	go func() {
		log.Printf("Starting server on port %s...", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if sched != nil {
		if err := sched.Shutdown(); err != nil {
			log.Printf("⚠️ Scheduler shutdown: %v", err)
		}
	}
	socketServer.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ Server shutdown: %v", err)
	}
}
