package main

import (
	"log"
)

var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	log.SetFlags(log.LstdFlags)
	if err := Execute(version, buildTime, gitCommit); err != nil {
		log.Fatal(err)
	}
}
