package main

import (
	"os"

	"github.com/willfong/mysqldb/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
