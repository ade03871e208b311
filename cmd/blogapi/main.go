package main

import "github.com/deicod/blogapi/internal/cli"

func main() {
	cli.Execute()
}
