package main

import "github.com/theirongolddev/streaklab/cmd"

func main() {
	cmd.Execute()
}
