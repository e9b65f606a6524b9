package main

import "github.com/khrees2412/jobsphere/cmd"

func main() {
	cmd.Execute()
}
