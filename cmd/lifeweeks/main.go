package main

import "github.com/buffos/lifeweeks/internal/cli"

func main() {
	cli.Main()
}
