package main

import "github.com/lukman83/promobot/cmd"

func main() {
	cmd.Execute()
}
