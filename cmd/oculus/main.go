package main

import (
	"os"

	"github.com/oculus/oculus/cmd/oculus/commands"
)

func main() {
	os.Exit(commands.Execute(os.Args[1:]))
}
