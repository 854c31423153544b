package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/nowonbun/nowonbun-mariadb-mcp/internal/meta"
)

func main() {
	// A .env in the working directory supplies GOMYMCP_* variables for
	// local runs; real environment variables win. Missing file is fine.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := runServe(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "configure":
		if err := runConfigure(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "doctor":
		if err := runDoctor(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("gomymcp %s — MySQL/MariaDB MCP Server\n", meta.Version)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  gomymcp serve       Start the MCP server (stdio by default, GOMYMCP_TRANSPORT=http for HTTP)")
	fmt.Println("  gomymcp configure   Run interactive configuration wizard")
	fmt.Println("  gomymcp doctor      Validate the configuration and print agent snippets")
	fmt.Println("  gomymcp --help      Show this help message")
}
