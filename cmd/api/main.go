package main

import (
	"playday/pkg/app"
	"playday/pkg/config"
)

const ServiceName = "playday-api"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting playday API")
	app.NewApplication(cfg).Run()
}
