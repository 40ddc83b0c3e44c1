package main

import "github.com/duelarena/server/internal/cli"

func main() {
	cli.Execute()
}
