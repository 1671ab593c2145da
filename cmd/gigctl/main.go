package main

import (
	"log"

	"github.com/pkordes/gigboard/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatal(err)
	}
}
