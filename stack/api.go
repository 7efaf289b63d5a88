package stack

import (
	. "github.com/imagewire/imagewire/intrinsics"
	"github.com/imagewire/imagewire/resources/serverless"
)

// ImagesApi fronts the function with an HTTP API.
// CORS mirrors the service middleware: any origin, POST/GET/OPTIONS.
var ImagesApi = serverless.HttpApi{
	CorsConfiguration: &serverless.HttpApi_CorsConfiguration{
		AllowOrigins: Any("*"),
		AllowMethods: Any("POST", "GET", "OPTIONS"),
		AllowHeaders: Any("*"),
	},
}
