package main

import "restaurant-insights/cmd"

func main() {
	cmd.Execute()
}
