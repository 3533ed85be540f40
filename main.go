package main

import (
	"os"

	"github.com/mlcompare/mlcompare/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
