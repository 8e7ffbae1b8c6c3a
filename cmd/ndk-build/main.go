package main

import "ndk-build/internal/cli"

func main() {
	cli.Execute()
}
