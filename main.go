package main

import (
	"log"
)

var (
	GitCommit string
	GitTag    string
	BuildTime string
)

// @title        Books In-Memory API
// @version      1.0
// @description  CRUD api over a collection of books held in memory.
// @host         127.0.0.1:8080
// @BasePath     /
func main() {
	app, err := NewApp()
	if err != nil {
		log.Fatal("application failed to initialized: ", err)
	}
	err = app.Run()
	if err != nil {
		log.Fatal("application exited. check logs for more details.", err)
	}
}
