package main

import "github.com/frahmantamala/clearance-management/cmd"

func main() {
	cmd.Execute()
}
