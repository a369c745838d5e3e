// Command rescuefat lists, extracts and describes the files of a FAT16 disk
// image. The heavy lifting lives in the library; this is only the shell
// around it.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"

	"github.com/mkling/rescuefat"
)

func main() {
	var (
		out     = pflag.StringP("out", "o", "", "directory to extract all files into")
		report  = pflag.Bool("report", false, "print a JSON metadata report for every file")
		workers = pflag.IntP("workers", "j", 0, "parallel extractions, 0 means one per CPU")
	)
	pflag.Parse()

	if pflag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <image>\n", os.Args[0])
		pflag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(pflag.Arg(0), *out, *report, *workers); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(imagePath, out string, report bool, workers int) error {
	osFs := afero.NewOsFs()

	volume, err := rescuefat.OpenPath(osFs, imagePath)
	if err != nil {
		return err
	}

	if label := volume.Label(); label != "" {
		fmt.Fprintf(os.Stderr, "volume %q, %d entries\n", label, len(volume.Entries()))
	}

	// Without an output directory or report request just list the root
	// directory.
	if out == "" && !report {
		for _, entry := range volume.Entries() {
			info := entry.FileInfo()
			modified := ""
			if !info.ModTime().IsZero() {
				modified = info.ModTime().Format("2006-01-02 15:04:05")
			}
			fmt.Printf("%10d  %-19s  %s\n", info.Size(), modified, entry.Name())
		}
		return nil
	}

	var sink afero.Fs
	if out != "" {
		if err := os.MkdirAll(out, 0o755); err != nil {
			return err
		}
		sink = afero.NewBasePathFs(osFs, out)
	} else {
		// Report without extraction still needs the recovered bytes
		// somewhere; keep them in memory.
		sink = afero.NewMemMapFs()
	}

	results := rescuefat.NewExtractor(volume, sink, workers).Run()

	records := make([]rescuefat.Record, 0, len(results))
	for _, result := range results {
		if result.Err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", result.Name, result.Err)
		}
		if report {
			data, err := afero.ReadFile(sink, result.Name)
			if err != nil {
				return err
			}
			records = append(records, rescuefat.Describe(result, data))
		}
	}

	if report {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(records)
	}

	fmt.Fprintf(os.Stderr, "extracted %d files to %s\n", len(results), out)
	return nil
}
