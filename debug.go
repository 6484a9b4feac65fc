package main

import "log"

// debugMode is set from --debug.
var debugMode bool

func debugLog(format string, args ...any) {
	if debugMode {
		log.Printf("DEBUG: "+format, args...)
	}
}
