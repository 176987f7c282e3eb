package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/serenorg/AppFlowy-Web/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Main(ctx, os.Args[1:])
	stop()
	if err != nil {
		log.Fatal(err)
	}
}
