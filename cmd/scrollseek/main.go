package main

import "github.com/devicelab-dev/scrollseek/pkg/cli"

func main() {
	cli.Execute()
}
