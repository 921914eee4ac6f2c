package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"turnipmarket/internal/api"
	"turnipmarket/internal/config"
	"turnipmarket/internal/db"
	"turnipmarket/internal/engine"
	"turnipmarket/internal/logger"
)

var version = "dev"

func main() {
	pricesFlag := flag.String("prices", "", "comma-separated 14-slot price list (blank slot = unknown)")
	firstBuy := flag.Bool("first-buy", false, "this is the player's first-ever week of participation")
	previousPattern := flag.Int("previous-pattern", engine.UnknownPattern, "last week's pattern number (0-3), or -1 if unknown")
	jsonOut := flag.Bool("json", false, "print raw JSON instead of a formatted table")
	serve := flag.String("serve", "", "listen address for HTTP API mode (e.g. :13380); when set, prices/json flags are ignored")
	noHistory := flag.Bool("no-history", false, "disable SQLite history persistence")
	flag.Parse()

	logger.Banner(version)
	cfg := config.Default()

	if *serve != "" {
		runServer(cfg, *serve, *noHistory)
		return
	}

	runOnce(cfg, *pricesFlag, *firstBuy, *previousPattern, *jsonOut, *noHistory)
}

func runOnce(cfg *config.Config, pricesFlag string, firstBuy bool, previousPattern int, jsonOut bool, noHistory bool) {
	obs, err := parsePrices(pricesFlag)
	if err != nil {
		logger.Error("CLI", err.Error())
		os.Exit(1)
	}

	results := engine.AnalyzePossibilities(obs, firstBuy, previousPattern)

	if !noHistory {
		if database, err := db.Open(); err == nil {
			defer database.Close()
			if _, err := database.InsertRun(obs, firstBuy, previousPattern, results); err != nil {
				logger.Warn("DB", "failed to persist run: "+err.Error())
			}
		} else {
			logger.Warn("DB", "history disabled: "+err.Error())
		}
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			logger.Error("CLI", err.Error())
			os.Exit(1)
		}
		return
	}

	printTable(results)
}

func runServer(cfg *config.Config, addr string, noHistory bool) {
	cfg.ServeAddr = addr

	var database *db.DB
	if !noHistory {
		var err error
		database, err = db.Open()
		if err != nil {
			logger.Warn("DB", "history disabled: "+err.Error())
			database = nil
		} else {
			defer database.Close()
		}
	}

	srv := api.NewServer(cfg, database)
	httpServer := &http.Server{Addr: addr, Handler: srv.Handler()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		logger.Info("Server", "Shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server", fmt.Sprintf("Shutdown error: %v", err))
		}
	}()

	logger.Info("Server", "Listening on "+addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server", fmt.Sprintf("Failed: %v", err))
		os.Exit(1)
	}
	logger.Info("Server", "Stopped")
}

// parsePrices turns a comma-separated, possibly sparse price list into a
// 14-slot observation vector. An empty field (or a field holding "-" or
// "?") becomes a missing slot. If only one of slots 0 and 1 (the buy
// price) is given, the other is filled with the same value.
func parsePrices(s string) ([engine.Slots]float64, error) {
	var obs [engine.Slots]float64
	for i := range obs {
		obs[i] = engine.Missing()
	}
	if strings.TrimSpace(s) == "" {
		return obs, nil
	}

	fields := strings.Split(s, ",")
	if len(fields) > engine.Slots {
		return obs, fmt.Errorf("parse prices: got %d fields, want at most %d", len(fields), engine.Slots)
	}
	for i, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" || f == "-" || f == "?" {
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return obs, fmt.Errorf("parse prices: field %d (%q): %w", i, f, err)
		}
		obs[i] = v
	}
	if engine.IsMissing(obs[1]) && !engine.IsMissing(obs[0]) {
		obs[1] = obs[0]
	} else if engine.IsMissing(obs[0]) && !engine.IsMissing(obs[1]) {
		obs[0] = obs[1]
	}
	return obs, nil
}

func printTable(results []engine.PredictionResult) {
	for _, r := range results {
		logger.Section(r.PatternName)
		logger.Stats("probability", fmt.Sprintf("%.4f", r.Probability))
		logger.Stats("category total probability", fmt.Sprintf("%.4f", r.CategoryTotalProbability))
		logger.Stats("week guaranteed minimum", r.WeekGuaranteedMinimum)
		logger.Stats("week max", r.WeekMax)
	}
}
