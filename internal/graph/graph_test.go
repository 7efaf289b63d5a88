package graph

import (
	"strings"
	"testing"

	imagewire "github.com/imagewire/imagewire"
)

func TestGenerator_Generate_SimpleGraph(t *testing.T) {
	resources := map[string]imagewire.DiscoveredResource{
		"ImagesApi": {
			Name: "ImagesApi",
			Type: "serverless.HttpApi",
		},
		"ImagesFunction": {
			Name:         "ImagesFunction",
			Type:         "serverless.Function",
			Dependencies: []string{"ImagesApi"},
		},
	}

	gen := &Generator{}
	var sb strings.Builder
	if err := gen.Generate(resources, nil, &sb); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := sb.String()

	if !strings.Contains(output, "digraph") {
		t.Error("expected digraph declaration")
	}
	if !strings.Contains(output, "ImagesApi") {
		t.Error("expected ImagesApi node")
	}
	if !strings.Contains(output, "ImagesFunction") {
		t.Error("expected ImagesFunction node")
	}
	if !strings.Contains(output, "AWS::Serverless::Function") {
		t.Error("expected CloudFormation type in node label")
	}
}

func TestGenerator_Generate_WithGetAtt(t *testing.T) {
	resources := map[string]imagewire.DiscoveredResource{
		"ApiRole": {
			Name: "ApiRole",
			Type: "iam.Role",
		},
		"ImagesFunction": {
			Name:         "ImagesFunction",
			Type:         "serverless.Function",
			Dependencies: []string{"ApiRole"},
			AttrRefUsages: []imagewire.AttrRefUsage{
				{ResourceName: "ApiRole", Attribute: "Arn", FieldPath: "Role"},
			},
		},
	}

	gen := &Generator{}
	var sb strings.Builder
	if err := gen.Generate(resources, nil, &sb); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// GetAtt edges are colored
	if !strings.Contains(sb.String(), "blue") {
		t.Error("expected blue color for GetAtt edge")
	}
}

func TestGenerator_Generate_WithParameters(t *testing.T) {
	resources := map[string]imagewire.DiscoveredResource{
		"ImagesFunction": {
			Name:         "ImagesFunction",
			Type:         "serverless.Function",
			Dependencies: []string{"OpenAiApiKey"},
		},
	}

	parameters := map[string]imagewire.DiscoveredParameter{
		"OpenAiApiKey": {
			Name: "OpenAiApiKey",
		},
	}

	gen := &Generator{IncludeParameters: true}
	var sb strings.Builder
	if err := gen.Generate(resources, parameters, &sb); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := sb.String()

	if !strings.Contains(output, "OpenAiApiKey") {
		t.Error("expected OpenAiApiKey parameter node")
	}
	if !strings.Contains(output, "ellipse") {
		t.Error("expected ellipse shape for parameter")
	}
}

func TestGenerator_Generate_ParametersExcludedByDefault(t *testing.T) {
	resources := map[string]imagewire.DiscoveredResource{
		"ImagesFunction": {
			Name:         "ImagesFunction",
			Type:         "serverless.Function",
			Dependencies: []string{"OpenAiApiKey"},
		},
	}
	parameters := map[string]imagewire.DiscoveredParameter{
		"OpenAiApiKey": {Name: "OpenAiApiKey"},
	}

	gen := &Generator{}
	var sb strings.Builder
	if err := gen.Generate(resources, parameters, &sb); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(sb.String(), "OpenAiApiKey") {
		t.Error("parameter should not appear without IncludeParameters")
	}
}

func TestGenerator_Generate_ClusterByType(t *testing.T) {
	resources := map[string]imagewire.DiscoveredResource{
		"ImagesApi": {
			Name: "ImagesApi",
			Type: "serverless.HttpApi",
		},
		"ImagesFunction": {
			Name: "ImagesFunction",
			Type: "serverless.Function",
		},
		"ApiRole": {
			Name: "ApiRole",
			Type: "iam.Role",
		},
	}

	gen := &Generator{ClusterByType: true}
	var sb strings.Builder
	if err := gen.Generate(resources, nil, &sb); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Serverless has two resources and gets a cluster
	if !strings.Contains(sb.String(), "cluster_Serverless") {
		t.Error("expected cluster subgraph for Serverless resources")
	}
}

func TestGenerator_Generate_MermaidFormat(t *testing.T) {
	resources := map[string]imagewire.DiscoveredResource{
		"ImagesApi": {
			Name: "ImagesApi",
			Type: "serverless.HttpApi",
		},
		"ImagesFunction": {
			Name:         "ImagesFunction",
			Type:         "serverless.Function",
			Dependencies: []string{"ImagesApi"},
		},
	}

	gen := &Generator{Format: FormatMermaid}
	var sb strings.Builder
	if err := gen.Generate(resources, nil, &sb); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := sb.String()

	if !strings.Contains(output, "graph") && !strings.Contains(output, "flowchart") {
		t.Errorf("expected mermaid graph/flowchart, got:\n%s", output)
	}
	if strings.Contains(output, "digraph") {
		t.Error("expected mermaid format, not DOT")
	}
}

func TestGenerator_GenerateString(t *testing.T) {
	resources := map[string]imagewire.DiscoveredResource{
		"ImagesApi": {
			Name: "ImagesApi",
			Type: "serverless.HttpApi",
		},
	}

	gen := &Generator{}
	output, err := gen.GenerateString(resources, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(output, "ImagesApi") {
		t.Error("expected ImagesApi in output")
	}
}

func TestExtractService(t *testing.T) {
	tests := []struct {
		goType string
		want   string
	}{
		{"serverless.Function", "Serverless"},
		{"s3.Bucket", "S3"},
		{"iam.Role", "IAM"},
		{"apigatewayv2.Api", "ApiGatewayV2"},
		{"dynamodb.Table", "DynamoDB"},
		{"lambda.Function", "Lambda"},
	}

	for _, tt := range tests {
		if got := extractService(tt.goType); got != tt.want {
			t.Errorf("extractService(%q) = %q, want %q", tt.goType, got, tt.want)
		}
	}
}

func TestGoTypeToCFType(t *testing.T) {
	tests := []struct {
		goType string
		want   string
	}{
		{"serverless.HttpApi", "AWS::Serverless::HttpApi"},
		{"s3.Bucket", "AWS::S3::Bucket"},
		{"unqualified", "unqualified"},
	}

	for _, tt := range tests {
		if got := goTypeToCFType(tt.goType); got != tt.want {
			t.Errorf("goTypeToCFType(%q) = %q, want %q", tt.goType, got, tt.want)
		}
	}
}
