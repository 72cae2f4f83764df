package main

import (
	"os"

	"github.com/priyanshu3301/civic-report-backend/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		os.Exit(1)
	}
}
