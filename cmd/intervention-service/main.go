package main

import (
	"log"

	"github.com/esilogis/intervention-service/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
