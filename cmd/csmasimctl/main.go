// csmasimctl is the command-line client for running and inspecting
// slotted CSMA/CA simulations, either locally or against a csmasimd daemon.
package main

import "github.com/hcoa-iot/csmasim/cmd/csmasimctl/commands"

func main() {
	commands.Execute()
}
