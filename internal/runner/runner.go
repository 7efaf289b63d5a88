// Package runner executes the stack package to extract declaration values.
//
// Discovery only sees the AST; actual property values (including intrinsic
// structs) exist at runtime. The runner generates a small Go program that
// imports the stack package, serializes the requested vars to JSON, and
// prints the result for the builder to consume.
package runner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"

	imagewire "github.com/imagewire/imagewire"
)

// runnerTemplate is the generated extraction program.
var runnerTemplate = template.Must(template.New("runner").Parse(`// Generated value extractor. Do not edit.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"

	"github.com/imagewire/imagewire/intrinsics"
	pkg "{{.ImportPath}}"
)

// Resource matches any CloudFormation resource struct.
type Resource interface {
	ResourceType() string
}

// parameterNames maps Parameter signature to logical name
var parameterNames = make(map[string]string)

// resourceSignatures maps resource JSON signature to logical name
var resourceSignatures = make(map[string]string)

func main() {
	pkgValue := reflect.ValueOf(pkg.{{.FirstVar}})
	_ = pkgValue // force the import

	varNames := os.Args[1:]

	// First pass: index parameters and resources by signature so nested
	// references serialize as Refs with the right logical names.
	for _, name := range varNames {
		value := getVar(name)
		if value == nil {
			continue
		}
		if param, ok := value.(intrinsics.Parameter); ok {
			parameterNames[paramSignature(param)] = name
		}
		if res, ok := value.(Resource); ok {
			resourceSignatures[resourceSignature(res)] = name
		}
	}

	result := make(map[string]map[string]any)

	for _, name := range varNames {
		value := getVar(name)
		if value == nil {
			continue
		}

		var props map[string]any

		// Parameters serialize via ToDefinition; their MarshalJSON yields
		// a Ref, which is wrong for the Parameters section.
		if param, ok := value.(intrinsics.Parameter); ok {
			result[name] = param.ToDefinition()
			continue
		}

		serialized := serializeValue(reflect.ValueOf(value))
		if m, ok := serialized.(map[string]any); ok {
			props = m
		} else if serialized != nil {
			data, err := json.Marshal(serialized)
			if err != nil {
				fmt.Fprintf(os.Stderr, "marshaling %s: %v\n", name, err)
				continue
			}
			if err := json.Unmarshal(data, &props); err != nil {
				fmt.Fprintf(os.Stderr, "unmarshaling %s: %v\n", name, err)
				continue
			}
		} else {
			continue
		}

		result[name] = props
	}

	output, _ := json.Marshal(result)
	fmt.Println(string(output))
}

func paramSignature(p intrinsics.Parameter) string {
	data, _ := json.Marshal(p.ToDefinition())
	return string(data)
}

func resourceSignature(r Resource) string {
	data, _ := json.Marshal(r)
	return r.ResourceType() + ":" + string(data)
}

// serializeValue converts a value to JSON-compatible form. Nested resources
// become Refs; Parameters become Refs with their discovered names.
func serializeValue(v reflect.Value) any {
	return serializeNested(v, false)
}

func serializeNested(v reflect.Value, nested bool) any {
	if !v.IsValid() {
		return nil
	}

	if v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		return serializeNested(v.Elem(), nested)
	}

	if v.Type().String() == "intrinsics.Parameter" {
		param := v.Interface().(intrinsics.Parameter)
		if name, found := parameterNames[paramSignature(param)]; found {
			return map[string]any{"Ref": name}
		}
		return map[string]any{"Ref": ""}
	}

	// A resource used as a nested value (e.g. ApiId: ImagesApi) becomes a Ref.
	if nested && v.CanInterface() {
		if res, ok := v.Interface().(Resource); ok {
			if name, found := resourceSignatures[resourceSignature(res)]; found {
				return map[string]any{"Ref": name}
			}
		}
	}

	// Intrinsics whose payloads can hold Parameters or resources are
	// serialized manually so those nested values resolve to Refs.
	if v.CanInterface() {
		iface := v.Interface()

		switch val := iface.(type) {
		case intrinsics.Join:
			values := make([]any, len(val.Values))
			for i, item := range val.Values {
				values[i] = serializeNested(reflect.ValueOf(item), true)
			}
			return map[string][]any{
				"Fn::Join": {val.Delimiter, values},
			}
		case intrinsics.SubWithMap:
			vars := make(map[string]any)
			for k, item := range val.Variables {
				vars[k] = serializeNested(reflect.ValueOf(item), true)
			}
			return map[string][]any{
				"Fn::Sub": {val.String, vars},
			}
		case intrinsics.Select:
			return map[string][]any{
				"Fn::Select": {
					val.Index,
					serializeNested(reflect.ValueOf(val.List), true),
				},
			}
		case intrinsics.If:
			return map[string][]any{
				"Fn::If": {
					val.Condition,
					serializeNested(reflect.ValueOf(val.ValueIfTrue), true),
					serializeNested(reflect.ValueOf(val.ValueIfFalse), true),
				},
			}
		case intrinsics.Base64:
			return map[string]any{
				"Fn::Base64": serializeNested(reflect.ValueOf(val.Value), true),
			}
		case intrinsics.ImportValue:
			return map[string]any{
				"Fn::ImportValue": serializeNested(reflect.ValueOf(val.ExportName), true),
			}
		case intrinsics.Split:
			return map[string][]any{
				"Fn::Split": {
					val.Delimiter,
					serializeNested(reflect.ValueOf(val.Source), true),
				},
			}
		case intrinsics.Tag:
			return map[string]any{
				"Key":   val.Key,
				"Value": serializeNested(reflect.ValueOf(val.Value), true),
			}
		}

		// Self-contained intrinsics (Ref, GetAtt, Sub, GetAZs) serialize
		// through their own MarshalJSON.
		_, isParam := iface.(intrinsics.Parameter)
		_, isRes := iface.(Resource)
		_, isOutput := iface.(intrinsics.Output)
		if !isParam && !isRes && !isOutput {
			if marshaler, ok := iface.(json.Marshaler); ok {
				data, err := marshaler.MarshalJSON()
				if err == nil {
					var out any
					if json.Unmarshal(data, &out) == nil {
						return out
					}
				}
			}
		}
	}

	switch v.Kind() {
	case reflect.Struct:
		result := make(map[string]any)
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			name := field.Name
			if tag := field.Tag.Get("json"); tag != "" {
				tagName := splitFirst(tag, ',')
				if tagName == "-" {
					continue
				}
				if tagName != "" {
					name = tagName
				}
			}
			fieldVal := v.Field(i)
			if isZero(fieldVal) {
				continue
			}
			serialized := serializeNested(fieldVal, true)
			if serialized != nil {
				result[name] = serialized
			}
		}
		if len(result) == 0 {
			return nil
		}
		return result

	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return nil
		}
		result := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			result[i] = serializeNested(v.Index(i), true)
		}
		return result

	case reflect.Map:
		if v.Len() == 0 {
			return nil
		}
		result := make(map[string]any)
		iter := v.MapRange()
		for iter.Next() {
			key := fmt.Sprintf("%v", iter.Key().Interface())
			result[key] = serializeNested(iter.Value(), true)
		}
		return result

	case reflect.String:
		s := v.String()
		if s == "" {
			return nil
		}
		return s

	case reflect.Bool:
		return v.Bool()

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint()

	case reflect.Float32, reflect.Float64:
		return v.Float()

	default:
		if v.CanInterface() {
			return v.Interface()
		}
		return nil
	}
}

func splitFirst(s string, sep byte) string {
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			return s[:i]
		}
	}
	return s
}

func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Slice, reflect.Map:
		return v.IsNil() || v.Len() == 0
	case reflect.String:
		return v.String() == ""
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if !isZero(v.Field(i)) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func getVar(name string) any {
	switch name {
{{range .VarNames}}	case "{{.}}":
		return pkg.{{.}}
{{end}}	}
	return nil
}
`))

// ExtractedValues contains all extracted values organized by section.
type ExtractedValues struct {
	Resources  map[string]map[string]any
	Parameters map[string]map[string]any
	Outputs    map[string]map[string]any
}

// ExtractValues runs a generated extractor for the given resources.
func ExtractValues(pkgPath string, resources map[string]imagewire.DiscoveredResource) (map[string]map[string]any, error) {
	if len(resources) == 0 {
		return nil, nil
	}

	varNames := make([]string, 0, len(resources))
	for name := range resources {
		varNames = append(varNames, name)
	}

	return extractVarValues(pkgPath, varNames)
}

// ExtractAll extracts values for all discovered declarations.
func ExtractAll(pkgPath string,
	resources map[string]imagewire.DiscoveredResource,
	parameters map[string]imagewire.DiscoveredParameter,
	outputs map[string]imagewire.DiscoveredOutput,
) (*ExtractedValues, error) {
	varNames := make([]string, 0)
	for name := range resources {
		varNames = append(varNames, name)
	}
	for name := range parameters {
		varNames = append(varNames, name)
	}
	for name := range outputs {
		varNames = append(varNames, name)
	}

	result := &ExtractedValues{
		Resources:  make(map[string]map[string]any),
		Parameters: make(map[string]map[string]any),
		Outputs:    make(map[string]map[string]any),
	}

	if len(varNames) == 0 {
		return result, nil
	}

	allValues, err := extractVarValues(pkgPath, varNames)
	if err != nil {
		return nil, err
	}

	for name := range resources {
		if val, ok := allValues[name]; ok {
			result.Resources[name] = val
		}
	}
	for name := range parameters {
		if val, ok := allValues[name]; ok {
			result.Parameters[name] = val
		}
	}
	for name := range outputs {
		if val, ok := allValues[name]; ok {
			result.Outputs[name] = val
		}
	}

	return result, nil
}

// packageDir strips the recursive wildcard from a package pattern. The
// extractor imports the pattern's root package; a literal "..." segment
// would produce an invalid import path.
func packageDir(pattern string) string {
	pattern = strings.TrimSuffix(pattern, "/...")
	pattern = strings.TrimSuffix(pattern, "...")
	if pattern == "" {
		return "."
	}
	return pattern
}

// extractVarValues generates the extractor program, runs it, and parses
// its JSON output.
func extractVarValues(pkgPath string, varNames []string) (map[string]map[string]any, error) {
	if len(varNames) == 0 {
		return nil, nil
	}

	absPath, err := filepath.Abs(packageDir(pkgPath))
	if err != nil {
		return nil, fmt.Errorf("getting absolute path: %w", err)
	}

	modInfo, err := findGoModInfo(absPath)
	if err != nil {
		return nil, fmt.Errorf("finding module info: %w", err)
	}

	// The import path must match the stack package's location within its
	// module, not just the module root.
	importPath := modInfo.ModulePath
	if rel, err := filepath.Rel(modInfo.GoModDir, absPath); err == nil && rel != "." {
		importPath = modInfo.ModulePath + "/" + filepath.ToSlash(rel)
	}

	tmpDir, err := os.MkdirTemp("", "imagewire-runner-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	runnerPath := filepath.Join(tmpDir, "main.go")
	f, err := os.Create(runnerPath)
	if err != nil {
		return nil, fmt.Errorf("creating runner file: %w", err)
	}

	data := struct {
		ImportPath string
		FirstVar   string
		VarNames   []string
	}{
		ImportPath: importPath,
		FirstVar:   varNames[0],
		VarNames:   varNames,
	}

	if err := runnerTemplate.Execute(f, data); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("executing template: %w", err)
	}
	_ = f.Close()

	// The runner module replaces the stack module with its on-disk path,
	// carrying over any replace directives the stack module declares.
	var replaceDirectives strings.Builder
	replaceDirectives.WriteString(fmt.Sprintf("replace %s => %s\n", modInfo.ModulePath, modInfo.GoModDir))
	for _, repl := range modInfo.Replaces {
		replaceDirectives.WriteString(resolveReplacePath(repl, modInfo.GoModDir) + "\n")
	}

	goModContent := fmt.Sprintf(`module runner

go 1.24.0

require %s v0.0.0

%s`, modInfo.ModulePath, replaceDirectives.String())
	if err := os.WriteFile(filepath.Join(tmpDir, "go.mod"), []byte(goModContent), 0644); err != nil {
		return nil, fmt.Errorf("writing go.mod: %w", err)
	}

	goBin := findGoBinary()

	tidyCmd := exec.Command(goBin, "mod", "tidy")
	tidyCmd.Dir = tmpDir
	if output, err := tidyCmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("go mod tidy failed: %w\n%s", err, output)
	}

	args := append([]string{"run", "main.go"}, varNames...)
	runCmd := exec.Command(goBin, args...)
	runCmd.Dir = tmpDir

	var stdout, stderr bytes.Buffer
	runCmd.Stdout = &stdout
	runCmd.Stderr = &stderr

	if err := runCmd.Run(); err != nil {
		return nil, fmt.Errorf("running extractor: %w\n%s", err, stderr.String())
	}

	var result map[string]map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		return nil, fmt.Errorf("parsing output: %w\noutput: %s\nstderr: %s", err, stdout.String(), stderr.String())
	}

	return result, nil
}
