package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/darkhz/bluescan/discovery"
)

// output is where discovered devices are printed.
var output io.Writer = os.Stdout

var (
	warnColor  = color.New(color.FgYellow, color.Bold)
	errorColor = color.New(color.FgRed, color.Bold)
)

// printWarn prints a warning to stdout.
func printWarn(message string) {
	warnColor.Println("[-]", message)
}

// printError prints an error to stdout.
func printError(err error) {
	errorColor.Println("[!]", err)
}

// printDevice prints a newly discovered device.
func printDevice(record discovery.DeviceRecord) {
	writeDevice(output, "[+] ", record)
}

// printDevices prints a list of devices under a title.
func printDevices(title string, records []discovery.DeviceRecord) {
	writeDevices(output, title, records)
}

func writeDevices(w io.Writer, title string, records []discovery.DeviceRecord) {
	color.New(color.Bold).Fprintf(w, "%s (%d):\n", title, len(records))

	for i, record := range records {
		writeDevice(w, fmt.Sprintf("%3d. ", i+1), record)
	}
}

func writeDevice(w io.Writer, prefix string, record discovery.DeviceRecord) {
	fmt.Fprintf(w, "%s%s %s\n", prefix, color.New(color.FgCyan).Sprint(record.Name), record.Identity())
}
