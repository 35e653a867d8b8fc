package main

import "github.com/kailas-cloud/askgate/internal/cli"

func main() {
	cli.Execute()
}
