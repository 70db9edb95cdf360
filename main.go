package main

import "restaurant_chat/cmd"

func main() {
	cmd.Execute()
}
