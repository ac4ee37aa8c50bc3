package main

import (
	"os"

	"jsonator/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
