// Команда loaddata загружает справочник ингредиентов из JSON файла:
//
//	loaddata data/ingredients.json
//
// Файл - массив объектов {"name", "measurement_unit"}. Повторный запуск
// пропускает уже загруженные пары.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/GoArmGo/foodgram/internal/config"
	"github.com/GoArmGo/foodgram/internal/database/client"
	"github.com/GoArmGo/foodgram/internal/database/postgres"
	"github.com/GoArmGo/foodgram/internal/logger"
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// loadConfig - только то, что нужно загрузчику
type loadConfig struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"text"`
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s <ingredients.json>\n", os.Args[0])
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0)); err != nil {
		slog.Error("loaddata failed", "error", err)
		os.Exit(1)
	}
}

func run(path string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("ошибка загрузки .env файла: %w", err)
	}
	var cfg loadConfig
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("ошибка парсинга конфигурации из окружения: %w", err)
	}

	log := logger.NewSlog(logger.SlogConfig{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("ошибка открытия файла %s: %w", path, err)
	}
	defer f.Close()

	ingredients, err := postgres.ParseIngredients(f)
	if err != nil {
		return err
	}

	// схема создается миграциями основного приложения
	dbClient, err := client.NewClient(&config.Config{DatabaseURL: cfg.DatabaseURL}, log)
	if err != nil {
		return err
	}
	if err := dbClient.Close(); err != nil {
		return err
	}

	db, err := postgres.NewGormDB(cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	inserted, err := postgres.NewIngredientImporter(db, log).Import(ctx, ingredients)
	if err != nil {
		return err
	}

	log.Info("ingredients loaded", "file", path, "parsed", len(ingredients), "inserted", inserted)
	return nil
}
