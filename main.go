package main

import "playdate-buddy-backend/cmd"

func main() {
	cmd.Run()
}
