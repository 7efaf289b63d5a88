package imagewire

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttrRef_MarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		ref      AttrRef
		expected string
	}{
		{
			name:     "role arn",
			ref:      AttrRef{Resource: "ApiRole", Attribute: "Arn"},
			expected: `{"Fn::GetAtt":["ApiRole","Arn"]}`,
		},
		{
			name:     "http api endpoint",
			ref:      AttrRef{Resource: "ImagesApi", Attribute: "ApiEndpoint"},
			expected: `{"Fn::GetAtt":["ImagesApi","ApiEndpoint"]}`,
		},
		{
			name:     "function arn",
			ref:      AttrRef{Resource: "ImagesFunction", Attribute: "Arn"},
			expected: `{"Fn::GetAtt":["ImagesFunction","Arn"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.ref)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(data))
		})
	}
}

func TestAttrRef_IsZero(t *testing.T) {
	tests := []struct {
		name     string
		ref      AttrRef
		expected bool
	}{
		{
			name:     "empty",
			ref:      AttrRef{},
			expected: true,
		},
		{
			name:     "with resource",
			ref:      AttrRef{Resource: "ApiRole"},
			expected: false,
		},
		{
			name:     "with attribute",
			ref:      AttrRef{Attribute: "Arn"},
			expected: false,
		},
		{
			name:     "fully populated",
			ref:      AttrRef{Resource: "ApiRole", Attribute: "Arn"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.ref.IsZero())
		})
	}
}

func TestDiscoveredResource_Fields(t *testing.T) {
	resource := DiscoveredResource{
		Name:         "ImagesFunction",
		Type:         "serverless.Function",
		Package:      "stack",
		File:         "compute.go",
		Line:         15,
		Dependencies: []string{"ImagesApi"},
	}

	assert.Equal(t, "ImagesFunction", resource.Name)
	assert.Equal(t, "serverless.Function", resource.Type)
	assert.Equal(t, "stack", resource.Package)
	assert.Equal(t, "compute.go", resource.File)
	assert.Equal(t, 15, resource.Line)
	assert.Equal(t, []string{"ImagesApi"}, resource.Dependencies)
}

func TestTemplate_JSON(t *testing.T) {
	template := Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Transform:                "AWS::Serverless-2016-10-31",
		Description:              "Image generation API",
		Resources: map[string]ResourceDef{
			"ImagesFunction": {
				Type: "AWS::Serverless::Function",
				Properties: map[string]any{
					"Handler": "bootstrap",
				},
			},
		},
		Parameters: map[string]Parameter{
			"OpenAiApiKey": {
				Type:        "String",
				Description: "OpenAI API key",
				NoEcho:      true,
			},
		},
		Outputs: map[string]Output{
			"ApiUrl": {
				Description: "HTTP API endpoint",
				Value:       map[string]string{"Fn::Sub": "https://${ImagesApi}.execute-api.${AWS::Region}.amazonaws.com"},
			},
		},
	}

	data, err := json.Marshal(template)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))

	assert.Equal(t, "2010-09-09", parsed["AWSTemplateFormatVersion"])
	assert.Equal(t, "AWS::Serverless-2016-10-31", parsed["Transform"])
	assert.Equal(t, "Image generation API", parsed["Description"])

	resources := parsed["Resources"].(map[string]any)
	fn := resources["ImagesFunction"].(map[string]any)
	assert.Equal(t, "AWS::Serverless::Function", fn["Type"])

	params := parsed["Parameters"].(map[string]any)
	key := params["OpenAiApiKey"].(map[string]any)
	assert.Equal(t, "String", key["Type"])
	assert.Equal(t, true, key["NoEcho"])

	outputs := parsed["Outputs"].(map[string]any)
	apiURL := outputs["ApiUrl"].(map[string]any)
	assert.Equal(t, "HTTP API endpoint", apiURL["Description"])
}

func TestTemplate_TransformOmittedWhenEmpty(t *testing.T) {
	template := Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Resources: map[string]ResourceDef{
			"Logs": {Type: "AWS::Logs::LogGroup"},
		},
	}

	data, err := json.Marshal(template)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))

	_, hasTransform := parsed["Transform"]
	assert.False(t, hasTransform, "Transform should be omitted for plain CloudFormation templates")
}

func TestResourceDef_DependsOn(t *testing.T) {
	resource := ResourceDef{
		Type: "AWS::Serverless::Function",
		Properties: map[string]any{
			"Handler": "bootstrap",
		},
		DependsOn: []string{"ImagesApi"},
	}

	data, err := json.Marshal(resource)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))

	assert.Equal(t, "AWS::Serverless::Function", parsed["Type"])
	dependsOn := parsed["DependsOn"].([]any)
	assert.Len(t, dependsOn, 1)
	assert.Equal(t, "ImagesApi", dependsOn[0])
}

func TestBuildResult_Success(t *testing.T) {
	result := BuildResult{
		Success: true,
		Template: Template{
			AWSTemplateFormatVersion: "2010-09-09",
			Resources: map[string]ResourceDef{
				"ImagesApi": {
					Type: "AWS::Serverless::HttpApi",
				},
			},
		},
		Resources: []string{"ImagesApi"},
	}

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))

	assert.True(t, parsed["success"].(bool))
	resources := parsed["resources"].([]any)
	assert.Equal(t, "ImagesApi", resources[0])
}

func TestBuildResult_Error(t *testing.T) {
	result := BuildResult{
		Success: false,
		Errors:  []string{"undefined resource: MissingApi", "parse error at line 15"},
	}

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))

	assert.False(t, parsed["success"].(bool))
	errors := parsed["errors"].([]any)
	assert.Len(t, errors, 2)
}

func TestLintResult(t *testing.T) {
	result := LintResult{
		Success: false,
		Issues: []LintIssue{
			{
				File:     "api.go",
				Line:     15,
				Column:   10,
				Severity: "warning",
				Message:  "Use pseudo-parameter constant instead of string",
				Rule:     "IW001",
				Fixable:  true,
			},
			{
				File:     "compute.go",
				Line:     23,
				Column:   5,
				Severity: "error",
				Message:  "undefined resource reference: MissingRole",
				Rule:     "undefined-reference",
				Fixable:  false,
			},
		},
	}

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))

	assert.False(t, parsed["success"].(bool))
	issues := parsed["issues"].([]any)
	assert.Len(t, issues, 2)

	issue1 := issues[0].(map[string]any)
	assert.Equal(t, "api.go", issue1["file"])
	assert.Equal(t, "warning", issue1["severity"])
	assert.True(t, issue1["fixable"].(bool))

	issue2 := issues[1].(map[string]any)
	assert.Equal(t, "error", issue2["severity"])
	assert.False(t, issue2["fixable"].(bool))
}

func TestOutput_WithExport(t *testing.T) {
	output := Output{
		Description: "API URL for cross-stack reference",
		Value:       map[string]string{"Ref": "ImagesApi"},
		Export: &struct {
			Name string `json:"Name"`
		}{
			Name: "ImageStack-ApiUrl",
		},
	}

	data, err := json.Marshal(output)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))

	export := parsed["Export"].(map[string]any)
	assert.Equal(t, "ImageStack-ApiUrl", export["Name"])
}

func TestParameter_AllTypes(t *testing.T) {
	tests := []struct {
		name  string
		param Parameter
	}{
		{
			name: "noecho string",
			param: Parameter{
				Type:        "String",
				Description: "OpenAI API key",
				NoEcho:      true,
			},
		},
		{
			name: "string with allowed values",
			param: Parameter{
				Type:          "String",
				Description:   "Environment name",
				Default:       "dev",
				AllowedValues: []any{"dev", "staging", "prod"},
			},
		},
		{
			name: "number",
			param: Parameter{
				Type:        "Number",
				Description: "Memory size",
				Default:     1024,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.param)
			require.NoError(t, err)

			var parsed map[string]any
			require.NoError(t, json.Unmarshal(data, &parsed))

			assert.Equal(t, tt.param.Type, parsed["Type"])
		})
	}
}
