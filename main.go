package main

import "podsafe/cmd"

func main() {
	cmd.Execute()
}
