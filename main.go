package main

import (
	"log"

	"github.com/velmala/funding-advisor/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
