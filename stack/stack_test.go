package stack

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imagewire/imagewire/internal/discover"
	"github.com/imagewire/imagewire/internal/serialize"
	"github.com/imagewire/imagewire/internal/template"
	"github.com/imagewire/imagewire/intrinsics"
	"github.com/imagewire/imagewire/resources/serverless"
)

func TestDiscoverStack(t *testing.T) {
	result, err := discover.Discover(discover.Options{
		Packages: []string{"."},
	})
	require.NoError(t, err)
	require.Empty(t, result.Errors)

	assert.Len(t, result.Resources, 2)
	assert.Contains(t, result.Resources, "ImagesApi")
	assert.Contains(t, result.Resources, "ImagesFunction")

	require.Contains(t, result.Parameters, "OpenAiApiKey")
	require.Contains(t, result.Outputs, "ApiUrl")

	// The function reaches the API through the route property var.
	deps := result.Resources["ImagesFunction"].Dependencies
	assert.Contains(t, deps, "ImagesRoute")
	assert.Contains(t, deps, "ImagesFunctionEnv")
}

func TestImagesFunctionProperties(t *testing.T) {
	props, err := serialize.Properties(ImagesFunction)
	require.NoError(t, err)

	assert.Equal(t, "bootstrap", props["Handler"])
	assert.Equal(t, "provided.al2023", props["Runtime"])
	assert.Equal(t, []any{"arm64"}, props["Architectures"])
	assert.Equal(t, "./cmd/imageapi", props["CodeUri"])
	assert.Equal(t, int64(1024), props["MemorySize"])
	assert.Equal(t, int64(60), props["Timeout"])
}

func TestImagesFunctionEnvRefsParameter(t *testing.T) {
	// Package init copies the parameter into the Variables map before a
	// logical name exists; the value extractor resolves such copies back to
	// their declaration by definition signature.
	held, ok := ImagesFunctionEnv.Variables["OPENAI_API_KEY"].(intrinsics.Parameter)
	require.True(t, ok, "OPENAI_API_KEY should hold the parameter")
	assert.Equal(t, OpenAiApiKey.ToDefinition(), held.ToDefinition())

	// Once the logical name is assigned, the parameter marshals as a Ref.
	named := held
	named.SetName("OpenAiApiKey")

	data, err := json.Marshal(serverless.Function_Environment{
		Variables: map[string]any{"OPENAI_API_KEY": named},
	})
	require.NoError(t, err)

	var env map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, map[string]any{"Ref": "OpenAiApiKey"}, env["Variables"]["OPENAI_API_KEY"])
}

func TestImagesRoute(t *testing.T) {
	data, err := json.Marshal(ImagesRoute.Properties)
	require.NoError(t, err)

	var route map[string]any
	require.NoError(t, json.Unmarshal(data, &route))
	assert.Equal(t, "/images/{proxy+}", route["Path"])
	assert.Equal(t, "ANY", route["Method"])
}

func TestOpenAiApiKeyDefinition(t *testing.T) {
	def := OpenAiApiKey.ToDefinition()

	assert.Equal(t, "String", def["Type"])
	assert.Equal(t, true, def["NoEcho"])

	// No default: deployment must always provide a key.
	assert.NotContains(t, def, "Default")
}

func TestApiUrlOutput(t *testing.T) {
	data, err := json.Marshal(ApiUrl.Value)
	require.NoError(t, err)

	assert.JSONEq(t,
		`{"Fn::Sub": "https://${ImagesApi}.execute-api.${AWS::Region}.amazonaws.com"}`,
		string(data))
}

// TestBuildTemplate runs discovery and the template builder against this
// package, standing in for the runner's runtime value extraction.
func TestBuildTemplate(t *testing.T) {
	result, err := discover.Discover(discover.Options{
		Packages: []string{"."},
	})
	require.NoError(t, err)
	require.Empty(t, result.Errors)

	builder := template.NewBuilderFull(result.Resources, result.Parameters, result.Outputs)

	apiProps, err := serialize.Properties(ImagesApi)
	require.NoError(t, err)
	builder.SetValue("ImagesApi", apiProps)

	builder.SetValue("ImagesFunction", map[string]any{
		"Handler":    "bootstrap",
		"Runtime":    "provided.al2023",
		"MemorySize": 1024,
		"Timeout":    60,
		"Environment": map[string]any{
			"Variables": map[string]any{
				"OPENAI_API_KEY": map[string]any{"Ref": "OpenAiApiKey"},
			},
		},
		"Events": map[string]any{
			"ImagesProxy": map[string]any{
				"Type": "HttpApi",
				"Properties": map[string]any{
					"ApiId":  map[string]any{"Ref": "ImagesApi"},
					"Path":   "/images/{proxy+}",
					"Method": "ANY",
				},
			},
		},
	})
	builder.SetValue("OpenAiApiKey", OpenAiApiKey.ToDefinition())
	builder.SetValue("ApiUrl", map[string]any{
		"Description": ApiUrl.Description,
		"Value": map[string]any{
			"Fn::Sub": "https://${ImagesApi}.execute-api.${AWS::Region}.amazonaws.com",
		},
	})

	tmpl, err := builder.Build()
	require.NoError(t, err)

	assert.Equal(t, "AWS::Serverless-2016-10-31", tmpl.Transform)
	assert.Equal(t, "AWS::Serverless::Function", tmpl.Resources["ImagesFunction"].Type)
	assert.Equal(t, "AWS::Serverless::HttpApi", tmpl.Resources["ImagesApi"].Type)

	param, ok := tmpl.Parameters["OpenAiApiKey"]
	require.True(t, ok)
	assert.True(t, param.NoEcho)
	assert.Nil(t, param.Default)

	out, ok := tmpl.Outputs["ApiUrl"]
	require.True(t, ok)
	assert.NotNil(t, out.Value)
}
