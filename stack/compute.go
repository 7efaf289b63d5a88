package stack

import (
	. "github.com/imagewire/imagewire/intrinsics"
	"github.com/imagewire/imagewire/resources/serverless"
)

// ImagesFunctionEnv injects the OpenAI API key into the function.
var ImagesFunctionEnv = serverless.Function_Environment{
	Variables: Json{
		"OPENAI_API_KEY": OpenAiApiKey,
	},
}

// ImagesRoute proxies every path under /images to the function.
var ImagesRoute = serverless.Function_EventSource{
	Type_: "HttpApi",
	Properties: serverless.Function_HttpApiEvent{
		ApiId:  ImagesApi,
		Path:   "/images/{proxy+}",
		Method: "ANY",
	},
}

// ImagesFunction runs the Go image API as a custom-runtime Lambda.
// Image generation calls run long, hence the 60s timeout.
var ImagesFunction = serverless.Function{
	Description:   "Image generation API backed by OpenAI",
	Handler:       "bootstrap",
	Runtime:       "provided.al2023",
	Architectures: Any("arm64"),
	CodeUri:       "./cmd/imageapi",
	MemorySize:    1024,
	Timeout:       60,
	Environment:   &ImagesFunctionEnv,
	Events: map[string]serverless.Function_EventSource{
		"ImagesProxy": ImagesRoute,
	},
}
