package main

import (
	"formrank/cmd"

	_ "github.com/lib/pq"
)

func main() {
	cmd.Execute()
}
