// Package graph generates DOT and Mermaid dependency graphs from discovered resources.
package graph

import (
	"io"
	"strings"

	"github.com/emicklei/dot"

	imagewire "github.com/imagewire/imagewire"
)

// Format specifies the output format for the graph.
type Format string

const (
	// FormatDOT outputs Graphviz DOT format.
	FormatDOT Format = "dot"
	// FormatMermaid outputs Mermaid format for GitHub/markdown rendering.
	FormatMermaid Format = "mermaid"
)

// Generator creates dependency graphs from discovered resources.
type Generator struct {
	// IncludeParameters includes parameter references in the graph.
	IncludeParameters bool

	// Format specifies the output format (dot or mermaid). Defaults to dot.
	Format Format

	// ClusterByType groups resources by AWS service.
	ClusterByType bool
}

// Generate creates a dependency graph and writes it to w.
func (g *Generator) Generate(resources map[string]imagewire.DiscoveredResource, parameters map[string]imagewire.DiscoveredParameter, w io.Writer) error {
	graph := g.buildGraph(resources, parameters)

	format := g.Format
	if format == "" {
		format = FormatDOT
	}

	var output string
	if format == FormatMermaid {
		output = dot.MermaidGraph(graph, dot.MermaidTopToBottom)
	} else {
		output = graph.String()
	}

	_, err := w.Write([]byte(output))
	return err
}

// GenerateString returns the graph as a string.
func (g *Generator) GenerateString(resources map[string]imagewire.DiscoveredResource, parameters map[string]imagewire.DiscoveredParameter) (string, error) {
	var sb strings.Builder
	if err := g.Generate(resources, parameters, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (g *Generator) buildGraph(resources map[string]imagewire.DiscoveredResource, parameters map[string]imagewire.DiscoveredParameter) *dot.Graph {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "TB")

	graph.NodeInitializer(func(n dot.Node) {
		n.Attr("shape", "box")
		n.Attr("fontname", "Arial")
	})

	graph.EdgeInitializer(func(e dot.Edge) {
		e.Attr("fontname", "Arial")
		e.Attr("fontsize", "10")
	})

	getAttRefs := g.buildGetAttSet(resources)

	if g.ClusterByType {
		g.addClusteredNodes(graph, resources)
	} else {
		g.addNodes(graph, resources)
	}

	if g.IncludeParameters && parameters != nil {
		for name := range parameters {
			n := graph.Node(name)
			n.Attr("shape", "ellipse")
			n.Attr("style", "dashed")
			n.Label(name)
		}
	}

	for name, res := range resources {
		for _, dep := range res.Dependencies {
			if _, isParam := parameters[dep]; isParam && !g.IncludeParameters {
				continue
			}
			_, isResource := resources[dep]
			_, isParam := parameters[dep]
			if !isResource && !isParam {
				continue
			}

			from := graph.Node(name)
			to := graph.Node(dep)
			e := graph.Edge(from, to)

			// GetAtt references get a distinct color from plain Refs.
			key := name + "->" + dep
			if getAttRefs[key] {
				e.Attr("color", "blue")
			}
		}
	}

	return graph
}

// buildGetAttSet collects edges that are GetAtt references.
func (g *Generator) buildGetAttSet(resources map[string]imagewire.DiscoveredResource) map[string]bool {
	getAttRefs := make(map[string]bool)
	for name, res := range resources {
		for _, usage := range res.AttrRefUsages {
			key := name + "->" + usage.ResourceName
			getAttRefs[key] = true
		}
	}
	return getAttRefs
}

func (g *Generator) addNodes(graph *dot.Graph, resources map[string]imagewire.DiscoveredResource) {
	for name, res := range resources {
		n := graph.Node(name)
		n.Label(name + "\\n[" + goTypeToCFType(res.Type) + "]")
	}
}

// addClusteredNodes adds resource nodes grouped by AWS service.
func (g *Generator) addClusteredNodes(graph *dot.Graph, resources map[string]imagewire.DiscoveredResource) {
	serviceResources := make(map[string][]string)
	resourceTypes := make(map[string]string)

	for name, res := range resources {
		service := extractService(res.Type)
		serviceResources[service] = append(serviceResources[service], name)
		resourceTypes[name] = res.Type
	}

	for service, resNames := range serviceResources {
		if len(resNames) > 1 {
			cluster := graph.Subgraph("cluster_"+service, dot.ClusterOption{})
			cluster.Attr("label", service)
			cluster.Attr("style", "rounded")
			cluster.Attr("bgcolor", "lightyellow")

			for _, name := range resNames {
				n := cluster.Node(name)
				n.Label(name + "\\n[" + goTypeToCFType(resourceTypes[name]) + "]")
			}
		} else {
			for _, name := range resNames {
				n := graph.Node(name)
				n.Label(name + "\\n[" + goTypeToCFType(resourceTypes[name]) + "]")
			}
		}
	}
}

// serviceNames maps Go package names to CloudFormation service names where
// simple capitalization is not enough.
var serviceNames = map[string]string{
	"apigatewayv2": "ApiGatewayV2",
	"cloudwatch":   "CloudWatch",
	"dynamodb":     "DynamoDB",
	"iam":          "IAM",
	"s3":           "S3",
	"sns":          "SNS",
	"sqs":          "SQS",
}

// extractService extracts the AWS service name from a Go type.
// e.g., "serverless.Function" -> "Serverless"
func extractService(goType string) string {
	parts := strings.Split(goType, ".")
	if len(parts) < 1 || parts[0] == "" {
		return "Other"
	}
	if name, ok := serviceNames[parts[0]]; ok {
		return name
	}
	return strings.ToUpper(parts[0][:1]) + parts[0][1:]
}

// goTypeToCFType converts a Go type to CloudFormation type format.
// e.g., "serverless.Function" -> "AWS::Serverless::Function"
func goTypeToCFType(goType string) string {
	parts := strings.Split(goType, ".")
	if len(parts) == 2 {
		return "AWS::" + extractService(goType) + "::" + parts[1]
	}
	return goType
}
