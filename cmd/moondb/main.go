package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/eternalApril/moondb/internal/config"
	"github.com/eternalApril/moondb/internal/expire"
	"github.com/eternalApril/moondb/internal/logger"
	"github.com/eternalApril/moondb/internal/scripting"
	"github.com/eternalApril/moondb/internal/server"
	"github.com/eternalApril/moondb/internal/storage"
	"go.uber.org/zap"
)

// runScript evaluates a Lua file and logs its reply
func runScript(path string, scripts *scripting.Engine, session *server.Session, log *zap.Logger) {
	src, err := os.ReadFile(path)
	if err != nil {
		log.Error("cant read script", zap.String("path", path), zap.Error(err))
		return
	}

	result := scripts.Eval(session, string(src), nil, nil, false)
	if result.IsError() {
		log.Error("script failed", zap.String("path", path), zap.String("error", result.Str))
		return
	}
	log.Info("script finished", zap.String("path", path), zap.String("reply", result.String()))
}

// readCommands executes one command per stdin line until EOF or ctx is done
func readCommands(ctx context.Context, engine *server.Engine, session *server.Session) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}

			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}
			fmt.Println(engine.Execute(session, fields[0], fields[1:]).String())
		}
	}
}

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		panic(err)
	}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	log := logger.New(cfg.Log)
	defer log.Sync() //nolint:errcheck

	log.Info("MoonDB starting",
		zap.Uint("shards", cfg.Storage.Shards),
		zap.Int("databases", cfg.Storage.Databases),
	)

	store, err := storage.New(
		storage.WithShards(cfg.Storage.Shards),
		storage.WithDatabases(cfg.Storage.Databases),
	)
	if err != nil {
		log.Error("cant initialize storage", zap.Error(err))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.GC.Enabled {
		gc := expire.New(store, cfg.GC, log)
		gc.Start(ctx)
		defer gc.Stop()
	}

	engine := server.NewEngine(store, log.Named("engine"))
	session := engine.NewSession()

	if cfg.Scripting.Enabled {
		scripts := scripting.New(engine, log, scripting.WithTimeLimit(cfg.Scripting.TimeLimit))
		scripts.Install()

		for _, path := range os.Args[1:] {
			runScript(path, scripts, session, log)
		}
	} else if len(os.Args) > 1 {
		log.Warn("scripting is disabled, ignoring script files", zap.Strings("files", os.Args[1:]))
	}

	readCommands(ctx, engine, session)

	log.Info("MoonDB stopped")
}
