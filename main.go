package main

import "member-directory-backend/cmd"

func main() {
	cmd.Run()
}
