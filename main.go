package main

import "github.com/Taichi-iskw/enki/cmd"

func main() {
	cmd.Execute()
}
