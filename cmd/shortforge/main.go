package main

import "github.com/mgaillard/shortforge/internal/cli"

func main() {
	cli.Main()
}
