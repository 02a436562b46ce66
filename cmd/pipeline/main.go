package main

import "insurance-data-pipeline/internal/cli"

func main() {
	cli.Execute()
}
