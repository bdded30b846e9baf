package main

import "github.com/ValentinKolb/t38/cmd"

func main() {
	cmd.Execute()
}
