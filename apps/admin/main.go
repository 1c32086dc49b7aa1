package main

import (
	"context"
	"log"
	"os"

	"github.com/trezcool/mwalimu/core"
)

func main() {
	logger := log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	root := newRootCmd(&commandLine{conf: core.NewConfig(), out: os.Stdout})
	if err := root.ExecuteContext(context.Background()); err != nil {
		logger.Printf("error: %s", err)
		os.Exit(1)
	}
}
