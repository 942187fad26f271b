package main

import "ambulance-tracker-backend/cmd"

func main() {
	cmd.Run()
}
