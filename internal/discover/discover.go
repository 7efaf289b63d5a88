// Package discover finds infrastructure declarations in Go source.
//
// A stack package declares its template elements as package-level vars:
//
//	var ImagesFunction = serverless.Function{...}
//
// Discovery parses the package with go/ast, records every resource,
// parameter, and output declaration, and extracts cross-variable
// references so the template builder can order resources and resolve
// attribute references.
package discover

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	imagewire "github.com/imagewire/imagewire"
)

// knownResourcePackages maps resource package names to CloudFormation
// service prefixes. Only the services this project ships resource
// structs for (or plans to) are listed.
var knownResourcePackages = map[string]string{
	"apigatewayv2": "AWS::ApiGatewayV2",
	"cloudwatch":   "AWS::CloudWatch",
	"dynamodb":     "AWS::DynamoDB",
	"events":       "AWS::Events",
	"iam":          "AWS::IAM",
	"lambda":       "AWS::Lambda",
	"logs":         "AWS::Logs",
	"s3":           "AWS::S3",
	"serverless":   "AWS::Serverless",
	"sns":          "AWS::SNS",
	"sqs":          "AWS::SQS",
}

// Options configures the discovery process.
type Options struct {
	// Packages to scan (e.g., "./stack/...")
	Packages []string
	// Verbose enables debug output
	Verbose bool
}

// Result contains all discovered declarations and any errors.
type Result struct {
	// Resources maps logical name to discovered resource
	Resources map[string]imagewire.DiscoveredResource
	// Parameters maps logical name to discovered parameter
	Parameters map[string]imagewire.DiscoveredParameter
	// Outputs maps logical name to discovered output
	Outputs map[string]imagewire.DiscoveredOutput
	// AllVars tracks all package-level var declarations (including
	// non-resources) so dependency checks do not flag local helper vars
	AllVars map[string]bool
	// VarAttrRefs tracks AttrRef usages for every variable, including
	// property-type vars that resources reference
	VarAttrRefs map[string]VarAttrRefInfo
	// Errors encountered during parsing
	Errors []error
}

// VarAttrRefInfo tracks AttrRef usages and variable references for a single variable.
type VarAttrRefInfo struct {
	AttrRefs []imagewire.AttrRefUsage
	// VarRefs maps field path to referenced variable name
	VarRefs map[string]string
}

// Discover scans Go packages for template declarations.
func Discover(opts Options) (*Result, error) {
	result := &Result{
		Resources:   make(map[string]imagewire.DiscoveredResource),
		Parameters:  make(map[string]imagewire.DiscoveredParameter),
		Outputs:     make(map[string]imagewire.DiscoveredOutput),
		AllVars:     make(map[string]bool),
		VarAttrRefs: make(map[string]VarAttrRefInfo),
	}

	for _, pkg := range opts.Packages {
		if err := discoverPackage(pkg, result, opts); err != nil {
			return nil, fmt.Errorf("discovering %s: %w", pkg, err)
		}
	}

	// Flag only truly undefined references. Property-type vars and other
	// local declarations are legitimate dependency targets.
	for name, res := range result.Resources {
		for _, dep := range res.Dependencies {
			if _, ok := result.Resources[dep]; ok {
				continue
			}
			if result.AllVars[dep] {
				continue
			}
			result.Errors = append(result.Errors, fmt.Errorf(
				"%s:%d: %s references undefined resource %q",
				res.File, res.Line, name, dep,
			))
		}
	}

	return result, nil
}

func discoverPackage(pattern string, result *Result, opts Options) error {
	pattern = strings.TrimSuffix(pattern, "/...")
	recursive := strings.HasSuffix(pattern, "...")
	if recursive {
		pattern = strings.TrimSuffix(pattern, "...")
	}

	absPath, err := filepath.Abs(pattern)
	if err != nil {
		return err
	}

	if recursive {
		return filepath.Walk(absPath, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return discoverDir(path, result, opts)
			}
			return nil
		})
	}

	return discoverDir(absPath, result, opts)
}

func discoverDir(dir string, result *Result, opts Options) error {
	fset := token.NewFileSet()

	pkgs, err := parser.ParseDir(fset, dir, func(fi os.FileInfo) bool {
		return !strings.HasSuffix(fi.Name(), "_test.go")
	}, parser.ParseComments)
	if err != nil {
		// Directory might not contain Go files
		if os.IsNotExist(err) || strings.Contains(err.Error(), "no Go files") {
			return nil
		}
		return err
	}

	for _, pkg := range pkgs {
		for filename, file := range pkg.Files {
			discoverFile(fset, filename, file, result)
		}
	}

	return nil
}

func discoverFile(fset *token.FileSet, filename string, file *ast.File, result *Result) {
	// Build import map: alias -> package path
	imports := make(map[string]string)
	for _, imp := range file.Imports {
		path := strings.Trim(imp.Path.Value, `"`)
		var name string
		if imp.Name != nil {
			name = imp.Name.Name
		} else {
			parts := strings.Split(path, "/")
			name = parts[len(parts)-1]
		}
		imports[name] = path
	}

	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.VAR {
			continue
		}

		for _, spec := range genDecl.Specs {
			valueSpec, ok := spec.(*ast.ValueSpec)
			if !ok || len(valueSpec.Names) != 1 || len(valueSpec.Values) != 1 {
				continue
			}

			name := valueSpec.Names[0].Name
			value := valueSpec.Values[0]

			if name == "_" {
				continue
			}

			// Track every var so dependency validation knows what exists.
			result.AllVars[name] = true

			compLit, ok := value.(*ast.CompositeLit)
			if !ok {
				continue
			}

			typeName, pkgName := extractTypeName(compLit.Type)
			if typeName == "" {
				continue
			}

			pos := fset.Position(valueSpec.Pos())

			if isIntrinsicPackage(pkgName, imports) || pkgName == "" {
				switch typeName {
				case "Parameter":
					result.Parameters[name] = imagewire.DiscoveredParameter{
						Name: name,
						File: filename,
						Line: pos.Line,
					}
					continue
				case "Output":
					_, attrRefs, _ := extractDependencies(compLit, imports)
					result.Outputs[name] = imagewire.DiscoveredOutput{
						Name:          name,
						File:          filename,
						Line:          pos.Line,
						AttrRefUsages: attrRefs,
					}
					continue
				}
			}

			// Extract dependencies, AttrRef usages, and var refs for every
			// composite literal. Property-type vars need tracking too so
			// AttrRefs reached through them resolve.
			deps, attrRefs, varRefs := extractDependencies(compLit, imports)

			result.VarAttrRefs[name] = VarAttrRefInfo{
				AttrRefs: attrRefs,
				VarRefs:  varRefs,
			}

			if _, known := knownResourcePackages[pkgName]; !known {
				continue
			}

			// Property types carry an underscore in the type name
			// (e.g. Function_Environment) and are not resources.
			if strings.Contains(typeName, "_") {
				continue
			}

			result.Resources[name] = imagewire.DiscoveredResource{
				Name:          name,
				Type:          fmt.Sprintf("%s.%s", pkgName, typeName),
				Package:       file.Name.Name,
				File:          filename,
				Line:          pos.Line,
				Dependencies:  deps,
				AttrRefUsages: attrRefs,
			}
		}
	}
}

// isIntrinsicPackage checks if the package name refers to the intrinsics package.
func isIntrinsicPackage(pkgName string, imports map[string]string) bool {
	if pkgName == "" {
		for alias, path := range imports {
			if alias == "." && strings.HasSuffix(path, "/intrinsics") {
				return true
			}
		}
		return false
	}
	if pkgName == "intrinsics" {
		return true
	}
	if path, ok := imports[pkgName]; ok {
		return strings.HasSuffix(path, "/intrinsics")
	}
	return false
}

// extractTypeName extracts the type name and package from a type expression.
// For serverless.Function, returns ("Function", "serverless").
func extractTypeName(expr ast.Expr) (typeName, pkgName string) {
	switch t := expr.(type) {
	case *ast.SelectorExpr:
		if ident, ok := t.X.(*ast.Ident); ok {
			return t.Sel.Name, ident.Name
		}
	case *ast.Ident:
		return t.Name, ""
	}
	return "", ""
}

// extractDependencies finds references to other variables in a composite
// literal. It recognizes:
//   - OtherResource (identifier reference)
//   - OtherResource.Arn (selector, recorded as an AttrRef usage)
//
// Returns dependencies, AttrRef usages, and a field-path to variable-name
// map used for recursive AttrRef resolution.
func extractDependencies(lit *ast.CompositeLit, imports map[string]string) ([]string, []imagewire.AttrRefUsage, map[string]string) {
	var deps []string
	var attrRefs []imagewire.AttrRefUsage
	varRefs := make(map[string]string)
	seen := make(map[string]bool)

	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			continue
		}

		fieldName := ""
		if ident, ok := kv.Key.(*ast.Ident); ok {
			fieldName = ident.Name
		}

		findDeps(kv.Value, &deps, &attrRefs, varRefs, seen, imports, fieldName)
	}

	return deps, attrRefs, varRefs
}

func findDeps(expr ast.Expr, deps *[]string, attrRefs *[]imagewire.AttrRefUsage, varRefs map[string]string, seen map[string]bool, imports map[string]string, fieldPath string) {
	switch v := expr.(type) {
	case *ast.Ident:
		name := v.Name
		if _, isImport := imports[name]; isImport {
			return
		}
		if isCommonIdent(name) {
			return
		}
		// Exported identifiers are treated as variable references.
		if len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z' {
			if !seen[name] {
				*deps = append(*deps, name)
				seen[name] = true
			}
			if varRefs != nil && fieldPath != "" {
				varRefs[fieldPath] = name
			}
		}

	case *ast.SelectorExpr:
		// Resource.Attribute (e.g. ApiRole.Arn), unless the base is a package.
		if ident, ok := v.X.(*ast.Ident); ok {
			name := ident.Name
			if _, isImport := imports[name]; isImport {
				return
			}
			if len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z' {
				if !seen[name] {
					*deps = append(*deps, name)
					seen[name] = true
				}
				*attrRefs = append(*attrRefs, imagewire.AttrRefUsage{
					ResourceName: name,
					Attribute:    v.Sel.Name,
					FieldPath:    fieldPath,
				})
			}
		}

	case *ast.CompositeLit:
		for _, elt := range v.Elts {
			if kv, ok := elt.(*ast.KeyValueExpr); ok {
				nestedPath := fieldPath
				if ident, ok := kv.Key.(*ast.Ident); ok {
					if fieldPath != "" {
						nestedPath = fieldPath + "." + ident.Name
					} else {
						nestedPath = ident.Name
					}
				}
				findDeps(kv.Value, deps, attrRefs, varRefs, seen, imports, nestedPath)
			} else {
				findDeps(elt, deps, attrRefs, varRefs, seen, imports, fieldPath)
			}
		}

	case *ast.UnaryExpr:
		// &Type{...}
		findDeps(v.X, deps, attrRefs, varRefs, seen, imports, fieldPath)

	case *ast.CallExpr:
		for _, arg := range v.Args {
			findDeps(arg, deps, attrRefs, varRefs, seen, imports, fieldPath)
		}

	case *ast.SliceExpr:
		findDeps(v.X, deps, attrRefs, varRefs, seen, imports, fieldPath)

	case *ast.IndexExpr:
		findDeps(v.X, deps, attrRefs, varRefs, seen, imports, fieldPath)
		findDeps(v.Index, deps, attrRefs, varRefs, seen, imports, fieldPath)
	}
}

// ResolveAttrRefs collects all AttrRef usages for a variable, following
// references into property-type vars and prefixing field paths.
func (r *Result) ResolveAttrRefs(varName string) []imagewire.AttrRefUsage {
	visited := make(map[string]bool)
	return r.resolveAttrRefs(varName, "", visited)
}

func (r *Result) resolveAttrRefs(varName, pathPrefix string, visited map[string]bool) []imagewire.AttrRefUsage {
	if visited[varName] {
		return nil
	}
	visited[varName] = true

	info, ok := r.VarAttrRefs[varName]
	if !ok {
		return nil
	}

	var result []imagewire.AttrRefUsage

	for _, ref := range info.AttrRefs {
		fullPath := ref.FieldPath
		if pathPrefix != "" {
			fullPath = pathPrefix + "." + ref.FieldPath
		}
		result = append(result, imagewire.AttrRefUsage{
			ResourceName: ref.ResourceName,
			Attribute:    ref.Attribute,
			FieldPath:    fullPath,
		})
	}

	for fieldPath, refVarName := range info.VarRefs {
		fullPath := fieldPath
		if pathPrefix != "" {
			fullPath = pathPrefix + "." + fieldPath
		}
		result = append(result, r.resolveAttrRefs(refVarName, fullPath, visited)...)
	}

	return result
}

// isCommonIdent returns true for identifiers that are never variable references.
func isCommonIdent(name string) bool {
	common := map[string]bool{
		// Go built-ins
		"true": true, "false": true, "nil": true,
		"string": true, "int": true, "bool": true, "float64": true,
		"any": true, "error": true,

		// Intrinsic function types
		"Ref": true, "Sub": true, "SubWithMap": true, "Join": true,
		"GetAtt": true, "Select": true, "Split": true, "If": true,
		"Equals": true, "And": true, "Or": true, "Not": true,
		"Condition": true, "FindInMap": true, "Base64": true,
		"Cidr": true, "GetAZs": true, "ImportValue": true,
		"Transform": true, "Json": true,
		"Parameter": true, "Output": true,

		// Pseudo-parameter constants
		"AWS_ACCOUNT_ID": true, "AWS_NOTIFICATION_ARNS": true,
		"AWS_NO_VALUE": true, "AWS_PARTITION": true,
		"AWS_REGION": true, "AWS_STACK_ID": true,
		"AWS_STACK_NAME": true, "AWS_URL_SUFFIX": true,
	}
	return common[name]
}
