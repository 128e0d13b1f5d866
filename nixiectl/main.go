// Command nixiectl inspects and edits the thermometer configuration record
// kept in an EEPROM image file.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
