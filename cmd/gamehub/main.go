package main

import "github.com/mcoot/robogamehub/internal/cli"

func main() {
	cli.Execute()
}
