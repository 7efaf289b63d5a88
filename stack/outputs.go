package stack

import (
	. "github.com/imagewire/imagewire/intrinsics"
)

// ApiUrl is the invoke URL of the deployed HTTP API.
var ApiUrl = Output{
	Description: "Invoke URL for the images API",
	Value:       Sub{String: "https://${ImagesApi}.execute-api.${AWS::Region}.amazonaws.com"},
}
