package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"pdfcombine/app/server"
	"pdfcombine/service"
	"pdfcombine/types"

	"github.com/joho/godotenv"
)

func init() {
	mustLoadEnvVariables()
}

func main() {
	cfg := types.LoadConfig()
	if err := service.EnsureDirs(cfg); err != nil {
		log.Fatal("error to create working directories: ", err)
	}

	s := server.NewServer(cfg)

	go s.Run()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	<-sigch
	log.Println("Received shutdown signal, shutting down server...")
	s.Stop()
}

func mustLoadEnvVariables() {
	err := godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file")
	}

}
