package main

import (
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/neosperience/serverless-starter/app"
	"github.com/neosperience/serverless-starter/config"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("failed loading configuration: %v", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed building function: %v", err)
	}
	defer func() { _ = a.Logger().Sync() }()

	lambda.Start(a.Handle)
}
