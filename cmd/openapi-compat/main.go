// Package main provides a CLI that checks a swagger.yaml revision against a base version.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"eventhub/internal/openapi"
)

func main() {
	basePath := flag.String("base", "", "base OpenAPI swagger.yaml path")
	revisionPath := flag.String("revision", "", "revision OpenAPI swagger.yaml path")
	requireCore := flag.Bool("require-core", true, "fail when the revision lacks a core users/events operation")
	flag.Parse()

	if strings.TrimSpace(*basePath) == "" || strings.TrimSpace(*revisionPath) == "" {
		fmt.Fprintln(os.Stderr, "usage: openapi-compat -base <path> -revision <path>")
		os.Exit(2)
	}

	base, err := openapi.Load(*basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load base spec: %v\n", err)
		os.Exit(1)
	}
	revision, err := openapi.Load(*revisionPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load revision spec: %v\n", err)
		os.Exit(1)
	}

	issues := openapi.Compare(base, revision)
	if *requireCore {
		for _, op := range openapi.MissingOperations(revision, openapi.CoreOperations) {
			issues = append(issues, "missing core operation: "+op.String())
		}
	}

	if len(issues) > 0 {
		fmt.Fprintln(os.Stderr, "backward compatibility check failed:")
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "- %s\n", issue)
		}
		os.Exit(1)
	}

	fmt.Println("openapi compatibility check passed")
}
