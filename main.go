package main

import "github.com/KaramelBytes/histx/cmd"

func main() {
	cmd.Execute()
}
