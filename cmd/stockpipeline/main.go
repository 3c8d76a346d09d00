package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Gangster26/airflow-stock-dag/internal/config"
	"github.com/Gangster26/airflow-stock-dag/internal/initializer"
)

func main() {
	cfgPath := flag.String("config", "./config.json", "path of the JSON or YAML config file")
	once := flag.Bool("once", false, "run the pipeline a single time and exit, for an external scheduler")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = initializer.Start(ctx, cfg, initializer.Options{Once: *once}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
