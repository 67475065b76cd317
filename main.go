package main

import (
	"github.com/HabitChainLabs/HabitChainBackend/cmd"
)

func main() {
	cmd.Execute()
}
