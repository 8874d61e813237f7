package main

import "proxyrank/internal/cli"

func main() {
	cli.Execute()
}
