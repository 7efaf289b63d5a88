// Lint rules for stack declaration files.
//
// Rules:
//
//	IW001: Use pseudo-parameter constants instead of hardcoded strings
//	IW002: Use intrinsic types instead of raw map[string]any
//	IW003: Detect duplicate resource variable names
//	IW004: Split files with too many resources
//	IW005: Do not hardcode secrets; use a NoEcho Parameter
package linter

import (
	"go/ast"
	"go/token"
	"regexp"
	"strconv"
	"strings"
)

// Rule is the interface for lint rules.
type Rule interface {
	ID() string
	Description() string
	Check(file *ast.File, fset *token.FileSet) []Issue
}

// AllRules returns every registered rule.
func AllRules() []Rule {
	return []Rule{
		HardcodedPseudoParameter{},
		MapShouldBeIntrinsic{},
		DuplicateResource{},
		FileTooLarge{},
		HardcodedSecret{},
	}
}

// HardcodedPseudoParameter detects hardcoded AWS pseudo-parameter strings.
//
// Detects: "AWS::Region", "AWS::AccountId", "AWS::StackName"
// Suggests: intrinsics.AWS_REGION, intrinsics.AWS_ACCOUNT_ID, etc.
type HardcodedPseudoParameter struct{}

func (r HardcodedPseudoParameter) ID() string { return "IW001" }
func (r HardcodedPseudoParameter) Description() string {
	return "Use pseudo-parameter constants instead of hardcoded strings"
}

var pseudoParams = map[string]string{
	"AWS::Region":           "AWS_REGION",
	"AWS::AccountId":        "AWS_ACCOUNT_ID",
	"AWS::StackName":        "AWS_STACK_NAME",
	"AWS::StackId":          "AWS_STACK_ID",
	"AWS::Partition":        "AWS_PARTITION",
	"AWS::URLSuffix":        "AWS_URL_SUFFIX",
	"AWS::NoValue":          "AWS_NO_VALUE",
	"AWS::NotificationARNs": "AWS_NOTIFICATION_ARNS",
}

func (r HardcodedPseudoParameter) Check(file *ast.File, fset *token.FileSet) []Issue {
	var issues []Issue

	ast.Inspect(file, func(n ast.Node) bool {
		lit, ok := n.(*ast.BasicLit)
		if !ok || lit.Kind != token.STRING {
			return true
		}

		// Exact match only; Sub strings like "${AWS::Region}" are fine.
		value := strings.Trim(lit.Value, `"`)

		if constant, found := pseudoParams[value]; found {
			pos := fset.Position(lit.Pos())
			issues = append(issues, Issue{
				Rule:       r.ID(),
				Message:    "Use " + constant + " instead of \"" + value + "\"",
				Suggestion: constant,
				File:       pos.Filename,
				Line:       pos.Line,
				Column:     pos.Column,
				Severity:   SeverityWarning,
			})
		}

		return true
	})

	return issues
}

// MapShouldBeIntrinsic detects map[string]any patterns that should use intrinsic types.
//
// Detects: map[string]any{"Ref": "..."}, map[string]any{"Fn::Sub": "..."}
// Suggests: intrinsics.Ref{...}, intrinsics.Sub{...}
type MapShouldBeIntrinsic struct{}

func (r MapShouldBeIntrinsic) ID() string { return "IW002" }
func (r MapShouldBeIntrinsic) Description() string {
	return "Use intrinsic types instead of raw map[string]any"
}

var intrinsicKeys = map[string]string{
	"Ref":             "Ref",
	"Fn::Sub":         "Sub",
	"Fn::Join":        "Join",
	"Fn::Select":      "Select",
	"Fn::GetAZs":      "GetAZs",
	"Fn::GetAtt":      "GetAtt",
	"Fn::If":          "If",
	"Fn::Base64":      "Base64",
	"Fn::Split":       "Split",
	"Fn::ImportValue": "ImportValue",
	"Fn::FindInMap":   "FindInMap",
	"Fn::Cidr":        "Cidr",
}

func (r MapShouldBeIntrinsic) Check(file *ast.File, fset *token.FileSet) []Issue {
	var issues []Issue

	ast.Inspect(file, func(n ast.Node) bool {
		comp, ok := n.(*ast.CompositeLit)
		if !ok {
			return true
		}

		if !isMapStringAny(comp.Type) {
			return true
		}

		if len(comp.Elts) != 1 {
			return true
		}

		kv, ok := comp.Elts[0].(*ast.KeyValueExpr)
		if !ok {
			return true
		}

		keyLit, ok := kv.Key.(*ast.BasicLit)
		if !ok || keyLit.Kind != token.STRING {
			return true
		}

		keyValue := strings.Trim(keyLit.Value, `"`)
		if typeName, found := intrinsicKeys[keyValue]; found {
			pos := fset.Position(comp.Pos())
			issues = append(issues, Issue{
				Rule:       r.ID(),
				Message:    "Use intrinsics." + typeName + "{...} instead of map[string]any{\"" + keyValue + "\": ...}",
				Suggestion: typeName + "{...}",
				File:       pos.Filename,
				Line:       pos.Line,
				Column:     pos.Column,
				Severity:   SeverityWarning,
			})
		}

		return true
	})

	return issues
}

// isMapStringAny checks if an expression is map[string]any.
func isMapStringAny(expr ast.Expr) bool {
	mapType, ok := expr.(*ast.MapType)
	if !ok {
		return false
	}

	keyIdent, ok := mapType.Key.(*ast.Ident)
	if !ok || keyIdent.Name != "string" {
		return false
	}

	switch v := mapType.Value.(type) {
	case *ast.Ident:
		return v.Name == "any"
	case *ast.InterfaceType:
		return len(v.Methods.List) == 0
	}

	return false
}

// DuplicateResource detects duplicate resource variable names in a file.
type DuplicateResource struct{}

func (r DuplicateResource) ID() string { return "IW003" }
func (r DuplicateResource) Description() string {
	return "Detect duplicate resource variable names"
}

func (r DuplicateResource) Check(file *ast.File, fset *token.FileSet) []Issue {
	var issues []Issue

	varLocations := make(map[string][]token.Position)

	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.VAR {
			continue
		}

		for _, spec := range genDecl.Specs {
			valueSpec, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}

			if !isResourceDeclaration(valueSpec) {
				continue
			}

			for _, name := range valueSpec.Names {
				pos := fset.Position(name.Pos())
				varLocations[name.Name] = append(varLocations[name.Name], pos)
			}
		}
	}

	for name, locations := range varLocations {
		if len(locations) > 1 {
			for _, loc := range locations[1:] {
				issues = append(issues, Issue{
					Rule:       r.ID(),
					Message:    "Duplicate resource variable '" + name + "' (first defined at line " + strconv.Itoa(locations[0].Line) + ")",
					Suggestion: "Rename one of the declarations",
					File:       loc.Filename,
					Line:       loc.Line,
					Column:     loc.Column,
					Severity:   SeverityError,
				})
			}
		}
	}

	return issues
}

// isResourceDeclaration checks if a value spec declares a resource.
func isResourceDeclaration(spec *ast.ValueSpec) bool {
	if len(spec.Values) == 0 {
		return false
	}

	for _, value := range spec.Values {
		comp, ok := value.(*ast.CompositeLit)
		if !ok {
			continue
		}

		sel, ok := comp.Type.(*ast.SelectorExpr)
		if !ok {
			continue
		}

		pkgIdent, ok := sel.X.(*ast.Ident)
		if !ok {
			continue
		}

		// Property types (underscore in type name) are not resources.
		if strings.Contains(sel.Sel.Name, "_") {
			continue
		}

		if isResourceModule(pkgIdent.Name) {
			return true
		}
	}

	return false
}

// isResourceModule checks if a package name is a resource module.
func isResourceModule(name string) bool {
	resourceModules := map[string]bool{
		"apigatewayv2": true,
		"cloudwatch":   true,
		"dynamodb":     true,
		"events":       true,
		"iam":          true,
		"lambda":       true,
		"logs":         true,
		"s3":           true,
		"serverless":   true,
		"sns":          true,
		"sqs":          true,
	}

	return resourceModules[name]
}

// FileTooLarge detects files with too many resources.
type FileTooLarge struct {
	MaxResources int
}

func (r FileTooLarge) ID() string { return "IW004" }
func (r FileTooLarge) Description() string {
	return "Split large files into smaller ones"
}

func (r FileTooLarge) Check(file *ast.File, fset *token.FileSet) []Issue {
	var issues []Issue

	maxResources := r.MaxResources
	if maxResources == 0 {
		maxResources = 15
	}

	count := 0
	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.VAR {
			continue
		}

		for _, spec := range genDecl.Specs {
			valueSpec, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}

			if isResourceDeclaration(valueSpec) {
				count += len(valueSpec.Names)
			}
		}
	}

	if count > maxResources {
		pos := fset.Position(file.Pos())
		issues = append(issues, Issue{
			Rule:       r.ID(),
			Message:    "File has " + strconv.Itoa(count) + " resources (max " + strconv.Itoa(maxResources) + "). Consider splitting by category: api.go, compute.go, storage.go",
			Suggestion: "Split resources into multiple files",
			File:       pos.Filename,
			Line:       1,
			Column:     0,
			Severity:   SeverityWarning,
		})
	}

	return issues
}

// HardcodedSecret detects credential-shaped string literals in declarations.
// API keys belong in a NoEcho Parameter, never in source.
type HardcodedSecret struct{}

func (r HardcodedSecret) ID() string { return "IW005" }
func (r HardcodedSecret) Description() string {
	return "Do not hardcode secrets; use a NoEcho Parameter"
}

var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^sk-[A-Za-z0-9_-]{20,}$`),        // OpenAI API key
	regexp.MustCompile(`^AKIA[0-9A-Z]{16}$`),             // AWS access key ID
	regexp.MustCompile(`^gh[pousr]_[A-Za-z0-9]{36,}$`),   // GitHub token
	regexp.MustCompile(`^xox[baprs]-[A-Za-z0-9-]{10,}$`), // Slack token
}

func (r HardcodedSecret) Check(file *ast.File, fset *token.FileSet) []Issue {
	var issues []Issue

	ast.Inspect(file, func(n ast.Node) bool {
		lit, ok := n.(*ast.BasicLit)
		if !ok || lit.Kind != token.STRING {
			return true
		}

		value := strings.Trim(lit.Value, `"`)
		for _, pattern := range secretPatterns {
			if pattern.MatchString(value) {
				pos := fset.Position(lit.Pos())
				issues = append(issues, Issue{
					Rule:       r.ID(),
					Message:    "Possible hardcoded credential; use a NoEcho Parameter instead",
					Suggestion: "var ApiKey = Parameter{Type: \"String\", NoEcho: true}",
					File:       pos.Filename,
					Line:       pos.Line,
					Column:     pos.Column,
					Severity:   SeverityError,
				})
				break
			}
		}

		return true
	})

	return issues
}
