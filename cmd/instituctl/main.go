package main

import "github.com/BruksfildServices01/institute-scheduler/internal/cli"

func main() {
	cli.Execute()
}
