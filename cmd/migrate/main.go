// migrate applies the embedded schema migrations: go run ./cmd/migrate -direction up
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/AchilleasB/coiipa/training-service/internal/config"
	"github.com/AchilleasB/coiipa/training-service/internal/db/migrate"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	if err := migrate.Run(config.DatabaseURL(), *direction); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
