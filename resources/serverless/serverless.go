// Package serverless provides AWS SAM (AWS::Serverless::*) resource types.
//
// These are hand-maintained structs for the SAM resources this project
// declares. Property shapes follow the AWS SAM resource specification;
// fields with reserved Go names keep the Type_ convention mapped to the
// CloudFormation "Type" property.
package serverless

// Function represents AWS::Serverless::Function.
//
// Example:
//
//	var ImagesFunction = serverless.Function{
//	    Handler:    "bootstrap",
//	    Runtime:    "provided.al2023",
//	    MemorySize: 1024,
//	    Timeout:    60,
//	}
type Function struct {
	FunctionName  any                             `json:"FunctionName,omitempty"`
	Description   string                          `json:"Description,omitempty"`
	Handler       string                          `json:"Handler,omitempty"`
	Runtime       string                          `json:"Runtime,omitempty"`
	Architectures []any                           `json:"Architectures,omitempty"`
	CodeUri       any                             `json:"CodeUri,omitempty"`
	MemorySize    int                             `json:"MemorySize,omitempty"`
	Timeout       int                             `json:"Timeout,omitempty"`
	Environment   *Function_Environment           `json:"Environment,omitempty"`
	Events        map[string]Function_EventSource `json:"Events,omitempty"`
	Role          any                             `json:"Role,omitempty"`
	Policies      any                             `json:"Policies,omitempty"`
	Layers        []any                           `json:"Layers,omitempty"`
	VpcConfig     *Function_VpcConfig             `json:"VpcConfig,omitempty"`
	Tags          map[string]any                  `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (Function) ResourceType() string { return "AWS::Serverless::Function" }

// Function_Environment holds environment variable configuration.
type Function_Environment struct {
	Variables map[string]any `json:"Variables,omitempty"`
}

// Function_EventSource is a single entry in a Function's Events map.
// Type is the event type (HttpApi, Api, Schedule, S3, SQS, ...);
// Properties carries the event-specific configuration.
type Function_EventSource struct {
	Type_      any `json:"Type,omitempty"`
	Properties any `json:"Properties,omitempty"`
}

// Function_HttpApiEvent configures an HttpApi event source.
//
// Example:
//
//	var ImagesProxyEvent = serverless.Function_EventSource{
//	    Type_: "HttpApi",
//	    Properties: serverless.Function_HttpApiEvent{
//	        Path:   "/images/{proxy+}",
//	        Method: "ANY",
//	        ApiId:  ImagesApi,
//	    },
//	}
type Function_HttpApiEvent struct {
	Path                 string `json:"Path,omitempty"`
	Method               string `json:"Method,omitempty"`
	ApiId                any    `json:"ApiId,omitempty"`
	PayloadFormatVersion any    `json:"PayloadFormatVersion,omitempty"`
	TimeoutInMillis      any    `json:"TimeoutInMillis,omitempty"`
}

// Function_VpcConfig holds VPC configuration.
type Function_VpcConfig struct {
	SecurityGroupIds []any `json:"SecurityGroupIds,omitempty"`
	SubnetIds        []any `json:"SubnetIds,omitempty"`
}

// Function_S3Location is an S3 location for function code.
type Function_S3Location struct {
	Bucket  any `json:"Bucket,omitempty"`
	Key     any `json:"Key,omitempty"`
	Version any `json:"Version,omitempty"`
}

// HttpApi represents AWS::Serverless::HttpApi.
type HttpApi struct {
	StageName                 string                     `json:"StageName,omitempty"`
	Description               string                     `json:"Description,omitempty"`
	CorsConfiguration         *HttpApi_CorsConfiguration `json:"CorsConfiguration,omitempty"`
	DisableExecuteApiEndpoint any                        `json:"DisableExecuteApiEndpoint,omitempty"`
	Tags                      map[string]any             `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (HttpApi) ResourceType() string { return "AWS::Serverless::HttpApi" }

// HttpApi_CorsConfiguration holds CORS configuration for an HTTP API.
type HttpApi_CorsConfiguration struct {
	AllowOrigins     []any `json:"AllowOrigins,omitempty"`
	AllowHeaders     []any `json:"AllowHeaders,omitempty"`
	AllowMethods     []any `json:"AllowMethods,omitempty"`
	AllowCredentials any   `json:"AllowCredentials,omitempty"`
	ExposeHeaders    []any `json:"ExposeHeaders,omitempty"`
	MaxAge           any   `json:"MaxAge,omitempty"`
}

// SimpleTable represents AWS::Serverless::SimpleTable.
type SimpleTable struct {
	TableName  any                     `json:"TableName,omitempty"`
	PrimaryKey *SimpleTable_PrimaryKey `json:"PrimaryKey,omitempty"`
	Tags       map[string]any          `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (SimpleTable) ResourceType() string { return "AWS::Serverless::SimpleTable" }

// SimpleTable_PrimaryKey holds primary key configuration.
type SimpleTable_PrimaryKey struct {
	Name  any `json:"Name,omitempty"`
	Type_ any `json:"Type,omitempty"`
}

// LayerVersion represents AWS::Serverless::LayerVersion.
type LayerVersion struct {
	LayerName               any    `json:"LayerName,omitempty"`
	Description             string `json:"Description,omitempty"`
	ContentUri              any    `json:"ContentUri,omitempty"`
	CompatibleRuntimes      []any  `json:"CompatibleRuntimes,omitempty"`
	CompatibleArchitectures []any  `json:"CompatibleArchitectures,omitempty"`
	RetentionPolicy         any    `json:"RetentionPolicy,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (LayerVersion) ResourceType() string { return "AWS::Serverless::LayerVersion" }
