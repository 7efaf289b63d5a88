package template

import (
	"fmt"
	"testing"

	imagewire "github.com/imagewire/imagewire"
)

// BenchmarkBuild benchmarks building templates with varying resource counts.
func BenchmarkBuild(b *testing.B) {
	sizes := []int{10, 50, 100}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("resources_%d", size), func(b *testing.B) {
			resources := generateFunctions(size)
			builder := NewBuilder(resources)

			for name := range resources {
				builder.SetValue(name, map[string]any{
					"Handler": "bootstrap",
					"Runtime": "provided.al2023",
				})
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := builder.Build(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkTopologicalSort benchmarks dependency ordering on a chain.
func BenchmarkTopologicalSort(b *testing.B) {
	sizes := []int{20, 100}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("resources_%d", size), func(b *testing.B) {
			resources := make(map[string]imagewire.DiscoveredResource)
			for i := 0; i < size; i++ {
				name := fmt.Sprintf("Function%d", i)
				res := imagewire.DiscoveredResource{
					Name: name,
					Type: "serverless.Function",
				}
				if i > 0 {
					res.Dependencies = []string{fmt.Sprintf("Function%d", i-1)}
				}
				resources[name] = res
			}

			builder := NewBuilder(resources)
			for name := range resources {
				builder.SetValue(name, map[string]any{})
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := builder.Build(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func generateFunctions(count int) map[string]imagewire.DiscoveredResource {
	resources := make(map[string]imagewire.DiscoveredResource, count)
	for i := 0; i < count; i++ {
		name := fmt.Sprintf("Function%d", i)
		resources[name] = imagewire.DiscoveredResource{
			Name: name,
			Type: "serverless.Function",
		}
	}
	return resources
}
