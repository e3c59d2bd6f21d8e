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

	"busbenin/internal/config"
	"busbenin/internal/events"
	"busbenin/internal/fedapay"
	inthttp "busbenin/internal/http"
	"busbenin/internal/http/handlers"
	"busbenin/internal/repositories"
	"busbenin/internal/services"
)

func main() {
	env := config.LoadEnv()

	if env.GinMode != "" {
		os.Setenv("GIN_MODE", env.GinMode)
	}

	db := config.ConnectDB(env)
	defer config.CloseDB()

	if err := repositories.EnsureSchema(db); err != nil {
		log.Fatalf("[BOOT] schéma: %v", err)
	}

	if env.FedaPaySecretKey == "" {
		log.Fatal("[BOOT] FEDAPAY_SECRET_KEY manquant")
	}
	gateway := fedapay.NewClient(env.FedaPaySecretKey, env.FedaPayEnvironment, env.FedaPayTimeout)

	bus := events.NewBus()
	defer bus.Close()

	auditCtx, cancelAudit := context.WithCancel(context.Background())
	defer cancelAudit()
	if err := events.StartAuditLog(auditCtx, bus); err != nil {
		log.Printf("[BOOT] journal d'audit indisponible: %v", err)
	}

	reservationService := services.ReservationService{
		ReservationRepo: repositories.ReservationRepository{DB: db},
		TrajetRepo:      repositories.TrajetRepository{DB: db},
		Gateway:         gateway,
		Events:          bus,
	}

	router := inthttp.NewRouter(env, inthttp.Handlers{
		System: handlers.SystemHandler{DB: db},
		Auth: handlers.AuthHandler{
			Users:     repositories.UserRepository{DB: db},
			JWTSecret: env.JWTSecret,
			JWTExpiry: env.JWTExpiry,
		},
		Compagnies:   handlers.CompagnieHandler{Compagnies: repositories.CompagnieRepository{DB: db}},
		Trajets:      handlers.TrajetHandler{Trajets: repositories.TrajetRepository{DB: db}},
		Reservations: handlers.ReservationHandler{Service: reservationService},
	})

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("[BOOT] serveur démarré sur %s (fedapay=%s)", env.AppAddr, env.FedaPayEnvironment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[BOOT] serveur: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[BOOT] arrêt en cours...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[BOOT] arrêt forcé: %v", err)
	}
	log.Println("[BOOT] serveur arrêté")
}
