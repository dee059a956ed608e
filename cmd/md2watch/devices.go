package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	flag "github.com/spf13/pflag"

	md2watch "github.com/alnah/go-md2watch"
)

type deviceJSON struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	DPI     int    `json:"dpi"`
	Default bool   `json:"default,omitempty"`
}

// runDevicesCmd prints the watch catalog.
func runDevicesCmd(args []string, env *Environment) error {
	fs := flag.NewFlagSet("devices", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	jsonOutput := fs.Bool("json", false, "print JSON")
	fs.Usage = func() { printDevicesUsage(env.Stderr) }
	if err := fs.Parse(args); err != nil {
		return usageError(err)
	}

	devices := md2watch.Devices()
	if *jsonOutput {
		out := make([]deviceJSON, len(devices))
		for i, d := range devices {
			out[i] = deviceJSON{Key: d.Key, Name: d.Name, Width: d.Width, Height: d.Height, DPI: d.DPI, Default: d.Key == md2watch.DefaultDeviceKey}
		}
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	return printDevices(env.Stdout, devices)
}

func printDevices(w io.Writer, devices []md2watch.DeviceProfile) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tMODEL\tSCREEN\tDPI")
	for _, d := range devices {
		key := d.Key
		if key == md2watch.DefaultDeviceKey {
			key += " *"
		}
		fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%d\n", key, d.Name, d.Width, d.Height, d.DPI)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "* default")
	return tw.Flush()
}
