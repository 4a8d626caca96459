package main

import "github.com/CommonGateway/GeboorteVrijBRPBundle/cmd"

func main() {
	cmd.Execute()
}
