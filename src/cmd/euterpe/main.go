package main

// Version is set via -ldflags "-X main.Version=..." at build time
var Version = "dev"

func main() {
	execute()
}
