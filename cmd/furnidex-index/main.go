package main

import "github.com/kailas-cloud/furnidex/internal/cli"

func main() {
	cli.Execute()
}
