package main

import "manifest-diff/internal/cli"

func main() {
	cli.Execute()
}
