package main

import "os"

//	@title			Bell alarm device simulator
//	@version		1.0
//	@description	REST and WebSocket surface of the simulated bell alarm device.
//	@BasePath		/

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}
