package main

import "github.com/ooxml-tools/ooxml-validator/pkg/cli"

func main() {
	cli.Execute()
}
