// Package stack declares the image API deployment.
//
// Generate the SAM template with:
//
//	imagewire build ./stack
package stack

import (
	. "github.com/imagewire/imagewire/intrinsics"
)

// OpenAiApiKey is supplied at deploy time and masked in console output.
// It has no default on purpose: a stack without a key is a broken stack.
var OpenAiApiKey = Parameter{
	Type:        "String",
	Description: "OpenAI API key for the image generation backend",
	NoEcho:      true,
}
