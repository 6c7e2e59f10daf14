package main

import "github.com/reagent-dev/reagent/internal/cli"

func main() {
	cli.Execute()
}
