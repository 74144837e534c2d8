package main

import (
	"github.com/workpulse-io/workpulse/cmd"
)

func main() {
	cmd.Execute()
}
