package main

import (
	"flag"
	"os"
	"time"

	"github.com/xnk3-aplus/360-Base/internal/app"
	"github.com/xnk3-aplus/360-Base/internal/shared/apperror"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	logger, err := newLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()

	// defaults target the previous month, the usual cron payload
	prev := time.Now().AddDate(0, -1, 0)
	year := flag.Int("year", prev.Year(), "report year")
	month := flag.Int("month", int(prev.Month()), "report month (1-12)")
	deliver := flag.Bool("deliver", false, "email each report after generating it")
	flag.Parse()

	if *month < 1 || *month > 12 {
		logger.Fatal("invalid month", zap.Int("month", *month))
	}

	if err := app.RunWorker(*year, time.Month(*month), *deliver); err != nil {
		logger.Fatal("run worker failed", zap.Error(err))
	}
}

func newLogger() (*zap.Logger, error) {
	if os.Getenv("APP_ENV") == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
