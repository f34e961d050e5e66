package main

import "media-replica/cmd"

func main() {
	cmd.Execute()
}
