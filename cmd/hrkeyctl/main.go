package main

import "hrkey/internal/cli"

func main() {
	cli.Execute()
}
