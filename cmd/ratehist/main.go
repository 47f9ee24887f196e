package main

import "interest-rate-history/internal/cli"

func main() {
	cli.Execute()
}
