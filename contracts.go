// Package imagewire provides Go types for declaring the image API deployment
// as CloudFormation/SAM resources.
//
// Infrastructure is declared with native Go syntax:
//
//	var ImagesApi = serverless.HttpApi{}
//
//	var ImagesFunction = serverless.Function{
//	    Handler: "bootstrap",
//	    Runtime: "provided.al2023",
//	}
//
// The imagewire CLI discovers these declarations via AST parsing and generates
// a SAM template.
package imagewire

import (
	"encoding/json"
)

// Resource represents a CloudFormation resource.
// All resource types (serverless.Function, lambda.Function, etc.) implement this interface.
type Resource interface {
	// ResourceType returns the CloudFormation type (e.g., "AWS::Serverless::Function")
	ResourceType() string
}

// AttrRef represents a GetAtt reference to a resource attribute.
// Resource types have AttrRef fields for each supported attribute.
//
// Example:
//
//	var ApiRole = iam.Role{...}
//	var ImagesFunction = serverless.Function{
//	    Role: ApiRole.Arn,  // ApiRole.Arn is an AttrRef
//	}
//
// When serialized to CloudFormation JSON, AttrRef becomes:
//
//	{"Fn::GetAtt": ["ApiRole", "Arn"]}
type AttrRef struct {
	// Resource is the logical name of the referenced resource
	Resource string
	// Attribute is the attribute name (e.g., "Arn", "ApiEndpoint")
	Attribute string
}

// MarshalJSON serializes AttrRef to CloudFormation GetAtt syntax.
func (a AttrRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]string{
		"Fn::GetAtt": {a.Resource, a.Attribute},
	})
}

// IsZero returns true if the AttrRef has not been populated.
func (a AttrRef) IsZero() bool {
	return a.Resource == "" && a.Attribute == ""
}

// AttrRefUsage records where an attribute reference appears in a declaration.
// Discovery extracts these so the template builder can splice Fn::GetAtt
// values into the serialized properties.
type AttrRefUsage struct {
	// ResourceName is the logical name of the referenced resource
	ResourceName string
	// Attribute is the referenced attribute (e.g., "Arn")
	Attribute string
	// FieldPath is the dotted property path where the reference appears
	FieldPath string
}

// DiscoveredResource represents a resource found by AST parsing.
// The CLI builds a map of these from user source files.
type DiscoveredResource struct {
	// Name is the variable name (becomes CloudFormation logical ID)
	Name string
	// Type is the Go type (e.g., "serverless.Function")
	Type string
	// Package is the package name containing the declaration
	Package string
	// File is the source file path
	File string
	// Line is the line number of the declaration
	Line int
	// Dependencies are logical names of referenced resources
	Dependencies []string
	// AttrRefUsages are attribute references found in the declaration
	AttrRefUsages []AttrRefUsage
}

// DiscoveredParameter represents a template parameter found by AST parsing.
type DiscoveredParameter struct {
	Name string
	File string
	Line int
}

// DiscoveredOutput represents a template output found by AST parsing.
type DiscoveredOutput struct {
	Name          string
	File          string
	Line          int
	AttrRefUsages []AttrRefUsage
}

// Template represents a CloudFormation/SAM template.
type Template struct {
	AWSTemplateFormatVersion string                 `json:"AWSTemplateFormatVersion" yaml:"AWSTemplateFormatVersion"`
	Transform                string                 `json:"Transform,omitempty" yaml:"Transform,omitempty"`
	Description              string                 `json:"Description,omitempty" yaml:"Description,omitempty"`
	Parameters               map[string]Parameter   `json:"Parameters,omitempty" yaml:"Parameters,omitempty"`
	Resources                map[string]ResourceDef `json:"Resources" yaml:"Resources"`
	Outputs                  map[string]Output      `json:"Outputs,omitempty" yaml:"Outputs,omitempty"`
}

// ResourceDef is a single resource in the CloudFormation template.
type ResourceDef struct {
	Type       string         `json:"Type" yaml:"Type"`
	Properties map[string]any `json:"Properties,omitempty" yaml:"Properties,omitempty"`
	DependsOn  []string       `json:"DependsOn,omitempty" yaml:"DependsOn,omitempty"`
}

// Parameter is a CloudFormation template parameter.
type Parameter struct {
	Type                  string   `json:"Type"`
	Description           string   `json:"Description,omitempty"`
	Default               any      `json:"Default,omitempty"`
	AllowedValues         []any    `json:"AllowedValues,omitempty"`
	AllowedPattern        string   `json:"AllowedPattern,omitempty"`
	ConstraintDescription string   `json:"ConstraintDescription,omitempty"`
	MinLength             *int     `json:"MinLength,omitempty"`
	MaxLength             *int     `json:"MaxLength,omitempty"`
	MinValue              *float64 `json:"MinValue,omitempty"`
	MaxValue              *float64 `json:"MaxValue,omitempty"`
	NoEcho                bool     `json:"NoEcho,omitempty"`
}

// Output is a CloudFormation template output.
type Output struct {
	Description string `json:"Description,omitempty"`
	Value       any    `json:"Value"`
	Export      *struct {
		Name string `json:"Name"`
	} `json:"Export,omitempty"`
}

// BuildResult is the JSON output from `imagewire build`.
type BuildResult struct {
	Success   bool     `json:"success"`
	Template  Template `json:"template,omitempty"`
	Resources []string `json:"resources,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

// LintResult is the JSON output from `imagewire lint`.
type LintResult struct {
	Success bool        `json:"success"`
	Issues  []LintIssue `json:"issues,omitempty"`
}

// LintIssue is a single linting issue.
type LintIssue struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Severity string `json:"severity"` // "error", "warning", "info"
	Message  string `json:"message"`
	Rule     string `json:"rule"`
	Fixable  bool   `json:"fixable"`
}

// ValidateResult is the JSON output from `imagewire validate`.
type ValidateResult struct {
	Success   bool     `json:"success"`
	Resources int      `json:"resources"`
	Errors    []string `json:"errors,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// ListResult is the JSON output from `imagewire list`.
type ListResult struct {
	Resources []ListResource `json:"resources"`
}

// ListResource is a single resource in the list output.
type ListResource struct {
	Name string `json:"name"`
	Type string `json:"type"`
	File string `json:"file"`
	Line int    `json:"line"`
}
