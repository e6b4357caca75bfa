package main

import (
	"github.com/avoronov/quorum/core/internal/app"
	"github.com/avoronov/quorum/core/internal/config"
)

func main() {
	app.Go(config.Load())
}
