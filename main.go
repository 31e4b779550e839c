package main

import "github.com/killallgit/voicenotes/cmd"

func main() {
	cmd.Execute()
}
