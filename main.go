package main

import (
	"os"

	"surfapp/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
