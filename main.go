/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/agrocoop/farmdesk/cmd"

func main() {
	cmd.Execute()
}
