package main

import "github.com/theirongolddev/chatburn/cmd"

func main() {
	cmd.Execute()
}
