package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/adrnhkm/nearby-chat/config"
	"github.com/adrnhkm/nearby-chat/internal/presence"
	"github.com/adrnhkm/nearby-chat/internal/proximity"
	chat_repo "github.com/adrnhkm/nearby-chat/internal/repo/chat"
	"github.com/adrnhkm/nearby-chat/internal/routers"
	chat_service "github.com/adrnhkm/nearby-chat/internal/use-case/chat-case"
	"github.com/adrnhkm/nearby-chat/internal/websocket"
	"github.com/adrnhkm/nearby-chat/internal/worker"
	"github.com/adrnhkm/nearby-chat/state"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appState, err := state.InitAppState(ctx, stop)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application state")
	}
	defer appState.Close()

	if err := chat_repo.EnsureIndexes(ctx, appState.Mongo); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure mongo indexes")
	}

	tracker := presence.NewTracker(appState.Redis, config.Conf.StaleWindow())
	gate := proximity.Gate{
		RadiusMeters: config.Conf.CHAT.RadiusMeters,
		StaleWindow:  config.Conf.StaleWindow(),
	}

	chatService := chat_service.NewChatService(appState, tracker, gate, config.Conf.CHAT.HistoryLimit)

	wsHub := websocket.NewHub(chatService)
	defer wsHub.Close()
	log.Info().Msg("Websocket hub initialized")

	sweeper := worker.NewPresenceSweeper(appState.Redis, tracker)
	sweeper.Start(ctx)

	r := routers.NewRouter(appState, tracker, chatService, wsHub, config.Conf.CHAT.RadiusMeters)

	server := &http.Server{
		Addr:         config.Conf.App.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Msgf("Starting server on http://localhost%s", config.Conf.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(fmt.Sprintf("ListenAndServe failed: %v", err))
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutdown initiated...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		fmt.Printf("Graceful shutdown failed: %v\n", err)
	} else {
		fmt.Println("Server exited gracefully.")
	}
	sweeper.Wait()
}
