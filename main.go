package main

import "github.com/tupyy/hwdetect-ng/cmd"

func main() {
	cmd.Execute()
}
