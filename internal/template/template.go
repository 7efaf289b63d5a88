// Package template builds CloudFormation templates from discovered declarations.
package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	imagewire "github.com/imagewire/imagewire"
)

// Builder constructs a CloudFormation template from discovered declarations.
type Builder struct {
	resources  map[string]imagewire.DiscoveredResource
	parameters map[string]imagewire.DiscoveredParameter
	outputs    map[string]imagewire.DiscoveredOutput
	values     map[string]any // runtime values keyed by logical name
	attrRefs   map[string][]imagewire.AttrRefUsage
}

// NewBuilder creates a template builder from discovered resources.
func NewBuilder(resources map[string]imagewire.DiscoveredResource) *Builder {
	return &Builder{
		resources:  resources,
		parameters: make(map[string]imagewire.DiscoveredParameter),
		outputs:    make(map[string]imagewire.DiscoveredOutput),
		values:     make(map[string]any),
		attrRefs:   make(map[string][]imagewire.AttrRefUsage),
	}
}

// NewBuilderFull creates a template builder from all discovered declarations.
func NewBuilderFull(
	resources map[string]imagewire.DiscoveredResource,
	parameters map[string]imagewire.DiscoveredParameter,
	outputs map[string]imagewire.DiscoveredOutput,
) *Builder {
	return &Builder{
		resources:  resources,
		parameters: parameters,
		outputs:    outputs,
		values:     make(map[string]any),
		attrRefs:   make(map[string][]imagewire.AttrRefUsage),
	}
}

// SetValue associates a runtime value with its logical name.
// Called by the CLI after extracting values from the stack package.
func (b *Builder) SetValue(name string, value any) {
	b.values[name] = value
}

// SetVarAttrRefs records resolved attribute references for a declaration.
// Attribute references (e.g. ApiRole.Arn) are zero values at runtime, so
// discovery supplies the field paths and the builder splices Fn::GetAtt
// into the serialized properties.
func (b *Builder) SetVarAttrRefs(name string, refs []imagewire.AttrRefUsage) {
	if len(refs) > 0 {
		b.attrRefs[name] = refs
	}
}

// Build constructs the CloudFormation template.
func (b *Builder) Build() (*imagewire.Template, error) {
	order, err := b.topologicalSort()
	if err != nil {
		return nil, err
	}

	tmpl := &imagewire.Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Resources:                make(map[string]imagewire.ResourceDef),
	}

	if len(b.parameters) > 0 {
		tmpl.Parameters = make(map[string]imagewire.Parameter)
		for name := range b.parameters {
			if val, ok := b.values[name]; ok {
				tmpl.Parameters[name] = b.serializeParameter(val)
			}
		}
	}

	hasSAMResources := false

	for _, name := range order {
		res := b.resources[name]
		value := b.values[name]

		resourceType := cfResourceType(res.Type)
		if resourceType == "" {
			return nil, fmt.Errorf("unknown resource type: %s", res.Type)
		}

		if isSAMResourceType(res.Type) {
			hasSAMResources = true
		}

		props, err := b.serializeResource(name, value)
		if err != nil {
			return nil, fmt.Errorf("serializing %s: %w", name, err)
		}

		tmpl.Resources[name] = imagewire.ResourceDef{
			Type:       resourceType,
			Properties: props,
		}
	}

	if len(b.outputs) > 0 {
		tmpl.Outputs = make(map[string]imagewire.Output)
		for name := range b.outputs {
			if val, ok := b.values[name]; ok {
				tmpl.Outputs[name] = b.serializeOutput(name, val)
			}
		}
	}

	// SAM resources require the serverless transform header.
	if hasSAMResources {
		tmpl.Transform = "AWS::Serverless-2016-10-31"
	}

	return tmpl, nil
}

// serializeParameter converts an extracted parameter value to template form.
func (b *Builder) serializeParameter(value any) imagewire.Parameter {
	valMap, ok := value.(map[string]any)
	if !ok {
		return imagewire.Parameter{Type: "String"}
	}

	param := imagewire.Parameter{}

	if t, ok := valMap["Type"].(string); ok {
		param.Type = t
	} else {
		param.Type = "String"
	}
	if desc, ok := valMap["Description"].(string); ok {
		param.Description = desc
	}
	if def, ok := valMap["Default"]; ok {
		param.Default = def
	}
	if vals, ok := valMap["AllowedValues"].([]any); ok {
		param.AllowedValues = vals
	}
	if pattern, ok := valMap["AllowedPattern"].(string); ok {
		param.AllowedPattern = pattern
	}
	if desc, ok := valMap["ConstraintDescription"].(string); ok {
		param.ConstraintDescription = desc
	}
	if v, ok := valMap["MinLength"].(float64); ok {
		i := int(v)
		param.MinLength = &i
	}
	if v, ok := valMap["MaxLength"].(float64); ok {
		i := int(v)
		param.MaxLength = &i
	}
	if v, ok := valMap["MinValue"].(float64); ok {
		param.MinValue = &v
	}
	if v, ok := valMap["MaxValue"].(float64); ok {
		param.MaxValue = &v
	}
	if v, ok := valMap["NoEcho"].(bool); ok {
		param.NoEcho = v
	}

	return param
}

// serializeOutput converts an extracted output value to template form.
func (b *Builder) serializeOutput(name string, value any) imagewire.Output {
	valMap, ok := value.(map[string]any)
	if !ok {
		return imagewire.Output{}
	}

	output := imagewire.Output{}

	if desc, ok := valMap["Description"].(string); ok {
		output.Description = desc
	}
	if val, ok := valMap["Value"]; ok {
		output.Value = b.transformValue(val)
	}
	if exp, ok := valMap["Export"].(map[string]any); ok {
		if expName, ok := exp["Name"].(string); ok {
			output.Export = &struct {
				Name string `json:"Name"`
			}{Name: expName}
		}
	}
	if expName, ok := valMap["ExportName"]; ok {
		output.Export = &struct {
			Name string `json:"Name"`
		}{Name: fmt.Sprintf("%v", expName)}
	}

	// Splice Fn::GetAtt for attribute references in the output value.
	if refs, ok := b.attrRefs[name]; ok {
		wrapper := map[string]any{"Value": output.Value}
		for _, ref := range refs {
			setAtPath(wrapper, ref.FieldPath, getAttValue(ref))
		}
		output.Value = wrapper["Value"]
	}

	return output
}

// serializeResource converts an extracted resource value to CloudFormation properties.
func (b *Builder) serializeResource(name string, value any) (map[string]any, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	var props map[string]any
	if err := json.Unmarshal(data, &props); err != nil {
		return nil, err
	}

	result := make(map[string]any)
	for key, val := range props {
		result[key] = b.transformValue(val)
	}

	for _, ref := range b.attrRefs[name] {
		setAtPath(result, ref.FieldPath, getAttValue(ref))
	}

	return result, nil
}

// transformValue walks serialized values, passing intrinsics through untouched.
func (b *Builder) transformValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		if _, ok := v["Ref"]; ok {
			return v
		}
		if _, ok := v["Fn::GetAtt"]; ok {
			return v
		}
		if _, ok := v["Fn::Sub"]; ok {
			return v
		}

		result := make(map[string]any)
		for key, val := range v {
			result[key] = b.transformValue(val)
		}
		return result

	case []any:
		result := make([]any, len(v))
		for i, elem := range v {
			result[i] = b.transformValue(elem)
		}
		return result

	default:
		return value
	}
}

func getAttValue(ref imagewire.AttrRefUsage) map[string]any {
	return map[string]any{
		"Fn::GetAtt": []any{ref.ResourceName, ref.Attribute},
	}
}

// setAtPath writes a value into nested maps following a dotted field path,
// creating intermediate maps as needed.
func setAtPath(props map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := props
	for i, part := range parts {
		if i == len(parts)-1 {
			current[part] = value
			return
		}
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
}

// topologicalSort returns resources in dependency order.
func (b *Builder) topologicalSort() ([]string, error) {
	graph := make(map[string][]string)
	inDegree := make(map[string]int)

	for name := range b.resources {
		graph[name] = nil
		inDegree[name] = 0
	}

	for name, res := range b.resources {
		for _, dep := range res.Dependencies {
			if _, exists := b.resources[dep]; exists {
				graph[dep] = append(graph[dep], name)
				inDegree[name]++
			}
		}
	}

	// Kahn's algorithm with a sorted queue for deterministic output.
	var queue []string
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	var result []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, neighbor := range graph[node] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
				sort.Strings(queue)
			}
		}
	}

	if len(result) != len(b.resources) {
		return nil, b.detectCycle()
	}

	return result, nil
}

// detectCycle finds and reports a cycle in the dependency graph.
func (b *Builder) detectCycle() error {
	visited := make(map[string]bool)
	path := make(map[string]bool)

	var cycle []string
	var findCycle func(node string) bool
	findCycle = func(node string) bool {
		visited[node] = true
		path[node] = true

		for _, dep := range b.resources[node].Dependencies {
			if _, exists := b.resources[dep]; !exists {
				continue
			}
			if !visited[dep] {
				if findCycle(dep) {
					cycle = append([]string{node}, cycle...)
					return true
				}
			} else if path[dep] {
				cycle = append([]string{dep, node}, cycle...)
				return true
			}
		}

		path[node] = false
		return false
	}

	for name := range b.resources {
		if !visited[name] {
			if findCycle(name) {
				break
			}
		}
	}

	if len(cycle) > 0 {
		msg := "circular dependency detected:\n"
		for i, name := range cycle {
			res := b.resources[name]
			msg += fmt.Sprintf("  %s (%s:%d)", name, res.File, res.Line)
			if i < len(cycle)-1 {
				msg += "\n    → "
			}
		}
		return errors.New(msg)
	}

	return errors.New("circular dependency detected")
}

// cfResourceType converts a Go type to its CloudFormation type.
// e.g. "serverless.Function" -> "AWS::Serverless::Function"
func cfResourceType(goType string) string {
	parts := strings.SplitN(goType, ".", 2)
	if len(parts) != 2 {
		return ""
	}

	serviceName := goPackageToCFService(parts[0])
	if serviceName == "" {
		return ""
	}

	return "AWS::" + serviceName + "::" + parts[1]
}

// goPackageToCFService maps resource package names to CloudFormation
// service names, handling the casing each service uses.
func goPackageToCFService(pkg string) string {
	directMap := map[string]string{
		"apigatewayv2": "ApiGatewayV2",
		"cloudwatch":   "CloudWatch",
		"dynamodb":     "DynamoDB",
		"events":       "Events",
		"iam":          "IAM",
		"lambda":       "Lambda",
		"logs":         "Logs",
		"s3":           "S3",
		"serverless":   "Serverless",
		"sns":          "SNS",
		"sqs":          "SQS",
	}

	return directMap[pkg]
}

// isSAMResourceType returns true if the Go type is a SAM resource.
func isSAMResourceType(goType string) bool {
	return strings.HasPrefix(goType, "serverless.")
}

// ToJSON serializes the template to JSON.
func ToJSON(t *imagewire.Template) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// ToYAML serializes the template to YAML.
func ToYAML(t *imagewire.Template) ([]byte, error) {
	return yaml.Marshal(t)
}
