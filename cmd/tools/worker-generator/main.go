// cmd/tools/worker-generator/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"reviewgate/pkg/registry"
)

func main() {
	activity := flag.String("activity", "", "Activity ID from registry (e.g., feedback.reply.send)")
	dirName := flag.String("dir", "", "Worker directory name (defaults to the task type)")
	outputDir := flag.String("output", "./internal/workers/", "Root directory for generated workers")
	registryPath := flag.String("registry", "configs/activity-registry.json", "Path to the activity registry JSON file")
	force := flag.Bool("force", false, "Overwrite existing files")
	flag.Parse()

	if *activity == "" {
		fmt.Println("Usage: worker-generator --activity <id> [--dir <name>] [--output <dir>] [--registry <path>] [--force]")
		fmt.Println("\nExample:")
		fmt.Println("  go run ./cmd/tools/worker-generator --activity events.summary.compute --dir summarize-events")
		os.Exit(1)
	}

	reg, err := registry.LoadRegistry(*registryPath)
	if err != nil {
		fmt.Printf("Error loading registry from %s: %v\n", *registryPath, err)
		os.Exit(1)
	}

	var found *registry.Activity
	for i := range reg.Activities {
		if reg.Activities[i].ID == *activity {
			found = &reg.Activities[i]
			break
		}
	}
	if found == nil {
		fmt.Printf("Activity '%s' not found in registry %s\n", *activity, *registryPath)
		os.Exit(1)
	}

	dir := *dirName
	if dir == "" {
		dir = found.TaskType
	}
	data := newWorkerData(*found, dir)
	workerDir := filepath.Join(*outputDir, mapCategoryToDirectory(found.Category), dir)

	if err := os.MkdirAll(workerDir, 0755); err != nil {
		fmt.Printf("Error creating directory: %v\n", err)
		os.Exit(1)
	}

	templates := []struct {
		file string
		tmpl string
	}{
		{"config.go", configTemplate},
		{"models.go", modelsTemplate},
		{"handler.go", handlerTemplate},
		{"handler_test.go", testTemplate},
	}

	failed := false
	for _, t := range templates {
		path := filepath.Join(workerDir, t.file)
		if _, err := os.Stat(path); err == nil && !*force {
			fmt.Printf("- Skipped %s (exists, use --force)\n", path)
			continue
		}

		src, err := render(t.file, t.tmpl, data)
		if err != nil {
			fmt.Printf("Error generating %s: %v\n", path, err)
			failed = true
			continue
		}
		if err := os.WriteFile(path, src, 0644); err != nil {
			fmt.Printf("Error writing %s: %v\n", path, err)
			failed = true
			continue
		}
		fmt.Printf("✓ Generated %s\n", path)
	}
	if failed {
		os.Exit(1)
	}

	fmt.Printf("\nWorker scaffold generated at: %s\n", workerDir)
	fmt.Printf("\nNext steps:\n")
	fmt.Printf("  1. Implement execute in handler.go\n")
	fmt.Printf("  2. Write tests in handler_test.go\n")
	fmt.Printf("  3. Register the worker in cmd/worker-manager/main.go\n")
	fmt.Printf("  4. Add a workers.%s entry to configs/config.yaml\n", found.TaskType)
}

// mapCategoryToDirectory maps registry categories to directory names
func mapCategoryToDirectory(category string) string {
	switch category {
	case "public":
		return "public"
	case "inbox":
		return "inbox"
	case "notification", "communication":
		return "notification"
	case "analytics", "reporting":
		return "analytics"
	default:
		return strings.ToLower(category)
	}
}
