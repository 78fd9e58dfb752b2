package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"gameshelf/internal/auth"
	"gameshelf/internal/catalog"
	"gameshelf/internal/ingest"
	"gameshelf/internal/library"
	"gameshelf/internal/rawg"
	"gameshelf/internal/recs"
	"gameshelf/internal/steam"
	synchub "gameshelf/internal/sync"
	"gameshelf/internal/translate"
	"gameshelf/internal/users"
	"gameshelf/pkg/database"
	"gameshelf/pkg/utils"
)

func main() {
	cfg := database.DefaultConfig()
	db := database.MustOpen(cfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	// Start TCP sync first (so you notice binding errors early)
	hub := synchub.NewHub()
	router.GET("/ws", synchub.WSHandler(hub))
	tcpSrv := synchub.NewServer(":7070", hub)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":      "not_ready",
				"db_error":    err.Error(),
				"tcp_clients": stats.TCPClients,
				"ws_clients":  stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"db":          "ok",
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	// External capabilities
	rawgClient := rawg.NewClient()
	if rawgClient.APIKey == "" {
		log.Println("[main] GAMESHELF_RAWG_KEY not set; external metadata lookups will be skipped")
	}
	steamClient := steam.NewClient()
	translateClient := translate.NewClient()

	// Catalog (public read surface)
	catalogRepo := catalog.NewRepo(db)
	catalogHandler := catalog.NewHandler(catalogRepo)
	catalogHandler.RegisterRoutes(router.Group("/games"))

	resolver := catalog.NewResolver(catalogRepo, rawgClient, translateClient)

	// Auth
	authCfg := utils.LoadAuthConfig()
	tokenSvc := auth.TokenService{
		Secret:   []byte(authCfg.JWTSecret),
		Issuer:   authCfg.JWTIssuer,
		Duration: authCfg.JWTDuration,
	}
	authRepo := auth.NewRepo(db)
	authHandler := auth.NewHandler(authRepo, tokenSvc)
	authHandler.RegisterRoutes(router.Group("/auth"))

	// Protected routes
	protected := router.Group("/users")
	protected.Use(auth.AuthMiddleware(tokenSvc, authRepo))

	usersRepo := users.NewRepo(db)
	usersHandler := users.NewHandler(usersRepo)
	usersHandler.RegisterRoutes(protected)

	// Library (protected): receipts in, ownership out
	libRepo := library.NewRepo(db)
	coordinator := ingest.NewCoordinator(resolver, libRepo)
	libHandler := library.NewHandler(libRepo, resolver, coordinator, hub)
	libHandler.RegisterRoutes(protected)

	// Recommendations (protected)
	recsHandler := recs.NewHandler(libRepo, rawgClient, steamClient)
	recsGroup := router.Group("/recommendations")
	recsGroup.Use(auth.AuthMiddleware(tokenSvc, authRepo))
	recsHandler.RegisterRoutes(recsGroup)

	httpSrv := &http.Server{
		Addr:    ":8080",
		Handler: router,
	}

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := tcpSrv.Run(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Println("HTTP API server listening on :8080")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	if err := tcpSrv.Close(); err != nil {
		log.Printf("tcp shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("servers stopped")
}
