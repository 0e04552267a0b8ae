package main

import "github.com/corvino/roomboard/internal/cli"

func main() {
	cli.Execute()
}
