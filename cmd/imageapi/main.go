// Command imageapi serves the image generation API.
//
// Inside Lambda (AWS_LAMBDA_FUNCTION_NAME set) it serves through the API
// Gateway V2 proxy adapter. Locally it listens on :8000 (PORT overridable).
package main

import (
	"net/http"
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	jsonhandler "github.com/apex/log/handlers/json"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"

	"github.com/imagewire/imagewire/internal/imageapi"
)

func main() {
	inLambda := os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""

	if inLambda {
		log.SetHandler(jsonhandler.New(os.Stderr))
	} else {
		log.SetHandler(cli.New(os.Stderr))
	}

	svc, err := imageapi.New(imageapi.Config{})
	if err != nil {
		log.WithError(err).Fatal("service init failed")
	}

	handler := svc.Handler()

	if inLambda {
		lambda.Start(httpadapter.NewV2(handler).ProxyWithContext)
		return
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	log.WithField("port", port).Info("listening")
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.WithError(err).Fatal("server failed")
	}
}
