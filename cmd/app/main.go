package main

import (
	"github.com/quipstack/core/internal/app"
	"github.com/quipstack/core/internal/config"
)

func main() {
	app.Go(config.Load())
}
