package main

import (
	"songshelf/cmd"
)

func main() {
	cmd.Execute()
}
